package filesearch

import "fmt"

const fileSearchInstruction = `You are a document assistant. Answer strictly from the passages returned by the file search tool.
If the retrieved passages do not contain the answer, say that the documents hold no information about it.
Do not use outside knowledge and do not invent sources. Keep the answer concise and in the language of the question.
`

func buildPrompt(question string) string {
	return fileSearchInstruction + fmt.Sprintf("Use the following question to provide an answer based on the retrieved documents: \"%s\"", question)
}
