package openai

import "fmt"

const describeResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "visual_summary": {"type": "string"},
    "text_content": {"type": "string"}
  },
  "required": ["visual_summary", "text_content"],
  "additionalProperties": false
}`

const describePromptTemplate = `Analyze this screenshot and describe it so that it can be found later by someone searching for it.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
1. IF the image contains text, UI elements, buttons, menus, forms, error messages, or any digital interface elements:
   - "text_content" must contain ALL visible text, transcribed verbatim, including button labels, menu items and error messages.
   - "visual_summary" must describe the layout, UI elements, colors, icons, charts and anything else someone might search for.
2. IF the image is purely visual content without text (like nature photos, objects, people):
   - "visual_summary" is ONE descriptive sentence focusing on the main visual elements, colors, and objects.
   - "text_content" is the empty string "".
- Do not guess at text you cannot read. Do not hallucinate.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example (login form):
Output:
{"visual_summary":"A centered login form with email and password fields, a blue Sign in button and a red error banner above the form.","text_content":"Sign in\nEmail\nPassword\nInvalid password\nSign in\nForgot password?"}

Example (photo):
Output:
{"visual_summary":"A golden retriever lying on green grass in bright sunlight.","text_content":""}`

const matchPromptTemplate = `You rate how well a screenshot description answers a search query.

Field being rated: %s
Search query: %q

Description:
"""
%s
"""

Rate the relevance from 0 (unrelated) to 100 (exact match). Consider synonyms, paraphrases and
UI terminology: a query for "login error" matches "Invalid password" shown on a sign-in form.
Output ONLY valid JSON of the form {"confidence": <integer 0-100>} and nothing else.`

// buildDescribePrompt creates the vision prompt with the response schema embedded.
func buildDescribePrompt() string {
	return fmt.Sprintf(describePromptTemplate, describeResponseSchema)
}

func buildMatchPrompt(query, field, text string) string {
	return fmt.Sprintf(matchPromptTemplate, fieldLabel(field), query, text)
}

func fieldLabel(field string) string {
	switch field {
	case "text_content":
		return "text visible in the screenshot"
	case "visual_summary":
		return "visual appearance of the screenshot"
	default:
		return field
	}
}
