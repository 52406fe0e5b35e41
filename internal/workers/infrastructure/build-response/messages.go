// internal/workers/infrastructure/build-response/messages.go
package buildresponse

import "provider-directory/internal/models"

const (
	greetingMessage = "Hello! I can help you find child protection service providers. " +
		"Ask me about a type of service, a district, or a specific organization."

	helpMessage = "Here are some things you can ask me:\n" +
		"- Find alternative care providers in Kicukiro\n" +
		"- Show services for orphans in Gasabo\n" +
		"- Tell me about <organization name>\n" +
		"- What's the phone number of <organization name>?\n" +
		"- What is in this directory?"

	unknownMessage = "I'm not sure what you're looking for. " +
		"Try naming a type of service, a district, or an organization."

	notUnderstoodMessage = "I didn't understand that. Please type a question about child protection services."

	apologyMessage = "Sorry, something went wrong while searching the directory. Please try again in a moment."

	needSpecificityMessage = "Could you be more specific? Tell me the type of service you need, " +
		"the district you are in, or who the support is for (for example orphans or street children)."
)

var (
	greetingSuggestions = []string{
		"Find alternative care providers",
		"Show psychosocial support services",
		"What can you do?",
	}

	defaultSuggestions = []string{
		"Find alternative care providers",
		"Show legal aid services",
		"Help",
	}
)

// NotUnderstood is the reply for empty or malformed input. It is produced
// without running extraction.
func NotUnderstood() models.Reply {
	return models.Reply{
		Response:    notUnderstoodMessage,
		Suggestions: cloneSuggestions(defaultSuggestions),
	}
}

// Apology is the reply used when the directory could not be read.
func Apology() models.Reply {
	return models.Reply{
		Response:    apologyMessage,
		Suggestions: cloneSuggestions(defaultSuggestions),
	}
}

func cloneSuggestions(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
