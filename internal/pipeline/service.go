package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Generator is the outbound generative-model capability: it accepts a
// prompt plus optional media and returns raw reply text. Implemented by
// the gemini gateway; faked in tests.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt, imageBase64 string) (string, error)
	GenerateWithAudio(ctx context.Context, prompt string, audio []byte) (string, error)
}

// Service runs the full pipeline for one request: render prompt, invoke
// the model, extract the structured payload, coerce fields, assemble
// records. It is stateless across requests; the profiles and templates it
// holds are read-only and safe for concurrent use.
type Service struct {
	gen          Generator
	textProfile  Profile
	imageProfile Profile
	metalProfile MetalProfile
	norm         *Normalizer
	log          zerolog.Logger
}

// NewService wires a Service with the default domain profiles.
func NewService(gen Generator, log zerolog.Logger) *Service {
	return &Service{
		gen:          gen,
		textProfile:  FinanceTextProfile(),
		imageProfile: FinanceImageProfile(),
		metalProfile: DefaultMetalProfile(),
		norm:         NewNormalizer(log),
		log:          log,
	}
}

func (s *Service) today() string {
	return s.norm.now().Format(dateLayout)
}

// ProcessFinanceText turns one free-text message into a single financial
// record. A model-declared rejection surfaces as SemanticRejectionError.
func (s *Service) ProcessFinanceText(ctx context.Context, text string) (*TransactionRecord, error) {
	prompt, err := renderPrompt(financeTextPromptTmpl, financePromptData{
		Profile: s.textProfile,
		Input:   text,
		Today:   s.today(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ex, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	switch ex.Kind {
	case ExtractedNote:
		return nil, &SemanticRejectionError{Reason: ex.Note}
	case ExtractedList:
		// The model disobeyed the single-object contract; honor its
		// content by taking the first element.
		if len(ex.List) > 0 {
			if obj, ok := ex.List[0].(map[string]interface{}); ok {
				rec := normalizeTransaction(obj, s.textProfile, s.norm)
				return &rec, nil
			}
		}
		return nil, &SemanticRejectionError{Reason: "no transaction detected"}
	default:
		rec := normalizeTransaction(ex.Object, s.textProfile, s.norm)
		return &rec, nil
	}
}

// ProcessFinanceImage turns a receipt image plus caption into an ordered
// list of financial records. A model-declared rejection is a successful
// empty result carrying an advisory note, never an error.
func (s *Service) ProcessFinanceImage(ctx context.Context, imageBase64, caption string) (*ReceiptResult, error) {
	prompt, err := renderPrompt(financeImagePromptTmpl, financePromptData{
		Profile: s.imageProfile,
		Caption: caption,
		Today:   s.today(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.GenerateWithImage(ctx, prompt, imageBase64)
	if err != nil {
		return nil, err
	}

	ex, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	result := &ReceiptResult{Transactions: []TransactionRecord{}}

	switch ex.Kind {
	case ExtractedNote:
		result.Note = ex.Note
	case ExtractedObject:
		// Single bare object instead of a list; honor its content.
		result.Transactions = AssembleTransactions([]interface{}{ex.Object}, s.imageProfile, s.norm)
	case ExtractedList:
		result.Transactions = AssembleTransactions(ex.List, s.imageProfile, s.norm)
	}

	if len(result.Transactions) == 0 && result.Note == "" {
		result.Note = "No transactions detected"
	}

	return result, nil
}

// ProcessMetalText turns one free-text message into a single precious-metal
// record, parsed from the line-shaped reply.
func (s *Service) ProcessMetalText(ctx context.Context, text string) (*MetalRecord, error) {
	prompt, err := renderPrompt(metalTextPromptTmpl, metalPromptData{
		MetalProfile: s.metalProfile,
		Input:        text,
		Today:        s.today(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ex, err := ExtractKeyValueLines(raw)
	if err != nil {
		return nil, err
	}

	if ex.Kind == ExtractedNote {
		return nil, &SemanticRejectionError{Reason: ex.Note}
	}

	rec := normalizeMetalFields(ex.Fields, s.metalProfile, s.norm)
	return &rec, nil
}

// ProcessMetalImage turns a purchase receipt image plus caption into an
// ordered list of precious-metal records.
func (s *Service) ProcessMetalImage(ctx context.Context, imageBase64, caption string) (*MetalReceiptResult, error) {
	prompt, err := renderPrompt(metalImagePromptTmpl, metalPromptData{
		MetalProfile: s.metalProfile,
		Caption:      caption,
		Today:        s.today(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.GenerateWithImage(ctx, prompt, imageBase64)
	if err != nil {
		return nil, err
	}

	ex, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	result := &MetalReceiptResult{Transactions: []MetalRecord{}}

	switch ex.Kind {
	case ExtractedNote:
		result.Note = ex.Note
	case ExtractedObject:
		result.Transactions = AssembleMetalRecords([]interface{}{ex.Object}, s.metalProfile, s.norm)
	case ExtractedList:
		result.Transactions = AssembleMetalRecords(ex.List, s.metalProfile, s.norm)
	}

	if len(result.Transactions) == 0 && result.Note == "" {
		result.Note = "No transactions detected"
	}

	return result, nil
}

// ProcessVoice summarizes the financial transactions spoken in an MP3 voice
// note as free text. The gateway runs the two-step upload-then-generate
// protocol; the reply is returned verbatim, not parsed into records.
func (s *Service) ProcessVoice(ctx context.Context, audio []byte) (string, error) {
	prompt, err := renderPrompt(voicePromptTmpl, struct{ Today string }{Today: s.today()})
	if err != nil {
		return "", err
	}

	raw, err := s.gen.GenerateWithAudio(ctx, prompt, audio)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

// WithClock overrides the normalizer's clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.norm.now = now
	return s
}
