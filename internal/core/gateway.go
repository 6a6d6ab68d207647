package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/calebwils/Smart-Juris/internal/i18n"
	"github.com/calebwils/Smart-Juris/internal/metrics"
	"github.com/calebwils/Smart-Juris/internal/store"
)

const (
	OpSearch = "search"
	OpChat   = "chat"
	OpDraft  = "draft"
)

const (
	chatSystemInstructionFR = "Tu es Smart Juris, un assistant juridique virtuel. Tes réponses doivent être précises, " +
		"professionnelles et citer les textes de loi quand c'est possible."
	chatSystemInstructionEN = "You are Smart Juris, a virtual legal assistant. Your answers must be precise, " +
		"professional, and cite legal texts whenever possible."
)

type LegalArticle struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type Ruling struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// SearchResult is the structured answer of a legal search. Slices are never
// nil, though they may be empty.
type SearchResult struct {
	Explanation   string         `json:"explanation"`
	Articles      []LegalArticle `json:"articles"`
	Jurisprudence []Ruling       `json:"jurisprudence"`
	Sources       []string       `json:"sources"`
}

// Retriever supplies reference excerpts relevant to a search query.
type Retriever interface {
	RelevantContext(ctx context.Context, query string) (string, error)
}

// Gateway turns feature-level intents into single provider round trips.
// It holds no conversation state and never retries.
type Gateway struct {
	provider  Provider
	retriever Retriever
	timeout   time.Duration
}

// NewGateway builds a gateway. retriever may be nil; timeout <= 0 leaves the
// caller's context in charge.
func NewGateway(provider Provider, retriever Retriever, timeout time.Duration) *Gateway {
	return &Gateway{provider: provider, retriever: retriever, timeout: timeout}
}

// Search asks for a structured legal analysis of query, answered in locale.
func (g *Gateway) Search(ctx context.Context, query string, locale i18n.Locale) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewValidationError("query", "required")
	}
	if !locale.Valid() {
		return nil, NewValidationError("locale", "must be fr or en")
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	result, err := g.search(ctx, query, locale)
	metrics.ObserveGateway(OpSearch, started, err)
	return result, err
}

func (g *Gateway) search(ctx context.Context, query string, locale i18n.Locale) (*SearchResult, error) {
	var reference string
	if g.retriever != nil {
		var err error
		reference, err = g.retriever.RelevantContext(ctx, query)
		if err != nil {
			log.Printf("Failed to get library context, proceeding without it: %v", err)
			reference = ""
		}
	}

	text, err := g.generate(ctx, OpSearch, GenerateRequest{
		Prompt:         searchPrompt(query, locale, reference),
		ResponseSchema: searchResponseSchema,
	})
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, &GatewayError{Op: OpSearch, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}
	if err := conformsTo(searchResponseSchema, payload, "$"); err != nil {
		return nil, &GatewayError{Op: OpSearch, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}

	var result SearchResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &GatewayError{Op: OpSearch, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}
	return &result, nil
}

// Chat sends one conversational turn. history is the full prior transcript
// in order; it is resent as-is before newMessage.
func (g *Gateway) Chat(ctx context.Context, history []Turn, newMessage string, locale i18n.Locale) (string, error) {
	if strings.TrimSpace(newMessage) == "" {
		return "", NewValidationError("message", "required")
	}
	if !locale.Valid() {
		return "", NewValidationError("locale", "must be fr or en")
	}
	for i, turn := range history {
		if turn.Role != store.SenderUser && turn.Role != store.SenderModel {
			return "", NewValidationError(fmt.Sprintf("history[%d].role", i), "must be user or model")
		}
	}

	instruction := chatSystemInstructionFR
	if locale == i18n.English {
		instruction = chatSystemInstructionEN
	}
	if history == nil {
		history = []Turn{}
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	text, err := g.generate(ctx, OpChat, GenerateRequest{
		SystemInstruction: instruction,
		History:           history,
		Prompt:            newMessage,
	})
	metrics.ObserveGateway(OpChat, started, err)
	return text, err
}

// Draft asks for a formal markdown document of documentType, with bracketed
// placeholders for whatever details leaves out.
func (g *Gateway) Draft(ctx context.Context, documentType, details string, locale i18n.Locale) (string, error) {
	documentType = strings.TrimSpace(documentType)
	if documentType == "" {
		return "", NewValidationError("document_type", "required")
	}
	if strings.TrimSpace(details) == "" {
		return "", NewValidationError("details", "required")
	}
	if !locale.Valid() {
		return "", NewValidationError("locale", "must be fr or en")
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	text, err := g.generate(ctx, OpDraft, GenerateRequest{Prompt: draftPrompt(documentType, details, locale)})
	metrics.ObserveGateway(OpDraft, started, err)
	return text, err
}

// withTimeout bounds a whole gateway call, library lookup included.
func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) generate(ctx context.Context, op string, req GenerateRequest) (string, error) {
	text, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", &GatewayError{Op: op, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GatewayError{Op: op, Err: ErrEmptyPayload}
	}
	return text, nil
}

func searchPrompt(query string, locale i18n.Locale, reference string) string {
	lang := "Français"
	if locale == i18n.English {
		lang = "English"
	}

	var b strings.Builder
	b.WriteString("You are a legal expert assisting a lawyer.\n")
	if reference != "" {
		fmt.Fprintf(&b, "The following excerpts from the firm's legal library may be relevant:\n\n--- LIBRARY START ---\n%s\n--- LIBRARY END ---\n\n", reference)
	}
	fmt.Fprintf(&b, "Analyze the following query: %q.\n", query)
	fmt.Fprintf(&b, "Answer strictly in %s, every field included.\n", lang)
	b.WriteString("Return a JSON object with exactly these fields:\n")
	fmt.Fprintf(&b, "- explanation: a clear and detailed explanation in %s.\n", lang)
	fmt.Fprintf(&b, "- articles: relevant legal articles, each with a title and a summary in %s.\n", lang)
	fmt.Fprintf(&b, "- jurisprudence: relevant case law, each with a name and a summary in %s.\n", lang)
	b.WriteString("- sources: the cited sources.\n")
	return b.String()
}

func draftPrompt(documentType, details string, locale i18n.Locale) string {
	if locale == i18n.English {
		return fmt.Sprintf("Draft a complete legal document of type %q. Details: %s. "+
			"The document must be formal, respect legal standards, and include placeholders [IN BRACKETS] "+
			"for any missing information. Format it in Markdown.", documentType, details)
	}
	return fmt.Sprintf("Rédige un document juridique complet de type %q. Détails : %s. "+
		"Le document doit être formel, respecter les standards juridiques, et inclure des espaces réservés "+
		"[ENTRE CROCHETS] pour les informations manquantes. Formate-le en Markdown.", documentType, details)
}
