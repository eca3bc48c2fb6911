package assistant

import "fmt"

// Customer-facing canned replies.
const (
	FallbackReply = "I couldn't find that in our site info yet. Could you share a bit more detail?"

	AskMeasurementsReply = "Happy to help with sizing! Share your bust, waist and hip measurements " +
		"(in inches or cm) and I'll suggest a size."

	RestateReply = "I couldn't read those measurements. Could you restate them with numbers, " +
		"for example \"bust 36 waist 30 hip 40\"?"
)

// Persona names the assistant and the store it speaks for.
type Persona struct {
	Name  string
	Brand string
}

// DefaultPersona is the stock storefront assistant.
func DefaultPersona() Persona {
	return Persona{Name: "MEGHA", Brand: "Megaska"}
}

// SystemPrompt instructs the generator to answer only from the supplied context.
func (p Persona) SystemPrompt() string {
	return fmt.Sprintf("You are %s, %s's AI sales assistant. "+
		"Use ONLY the CONTEXT for factual answers (policies, sizing/size charts, materials, shipping). "+
		"Be concise, friendly, and add a subtle call-to-action where relevant. "+
		"If it isn't in CONTEXT, say you're not sure and ask a helpful follow-up.", p.Name, p.Brand)
}

// UserPrompt pairs the customer question with the grounding block.
func UserPrompt(question, context string) string {
	return fmt.Sprintf("Customer question: %s\n\nCONTEXT:\n%s", question, context)
}
