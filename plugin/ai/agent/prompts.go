package agent

import "fmt"

// ToolNameSearch is the single retrieval tool bound to the oracle.
const ToolNameSearch = "fast_search_engine"

// DataNotFoundSentinel is the literal tool payload the oracle's instruction
// block special-cases. The retrieval layer returns a structured outcome; this
// string is only produced when rendering a not-found outcome for the model.
const DataNotFoundSentinel = "ERROR_CODE: DATA_NOT_FOUND. The database search yielded no relevant snippets."

const baseInstructions = "You are a professional financial assistant.\n" +
	"1. Always check the conversation history and summary first.\n" +
	"2. If information is missing, use 'fast_search_engine' to find it.\n" +
	"3. IMPORTANT: If the tool returns 'ERROR_CODE: DATA_NOT_FOUND', it means the data " +
	"does not exist in the financial reports. DO NOT attempt to search again " +
	"with different keywords. Instead, politely inform the user that the information " +
	"could not be found in the current records."

// Instructions builds the oracle's system prompt. A non-empty summary is
// appended verbatim under a labeled section.
func Instructions(summary string) string {
	if summary == "" {
		return baseInstructions
	}
	return fmt.Sprintf("%s\n--- [Conversation Summary] ---\n%s\n", baseInstructions, summary)
}

// SummarizePrompt builds the prompt for compressing the oldest slice of
// conversation history into the rolling summary.
func SummarizePrompt(currentSummary, newLines string) string {
	return fmt.Sprintf(
		"Summarize the following messages briefly.\n"+
			"The current summary: %s\n"+
			"The new conversations: %s\n",
		currentSummary, newLines)
}
