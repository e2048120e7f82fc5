package catalog

import "fmt"

const promptExample = `[
  {
    "name": "gmail",
    "description": "Send emails with Google Mail.",
    "actions": [
      {"name": "send_email", "description": "Send an email to a recipient."},
      {"name": "forward_email", "description": "Forward an existing email."},
      {"name": "apply_label", "description": "Apply a label to an email."}
    ]
  }
]`

// Prompt returns the instruction sent to the generative provider.
func Prompt(minApps, minActions int) string {
	return fmt.Sprintf(`You are a helpful assistant that generates synthetic data for a workflow automation platform. Generate at least %d unique apps with their names and descriptions. For each app, also generate at least %d actions with their names and descriptions. Provide the output in plain JSON format without any formatting. You are not writing markdown, you are writing JSON data.
Example:
%s`, minApps, minActions, promptExample)
}
