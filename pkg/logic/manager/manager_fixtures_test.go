package manager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const feedbackForm = `
id: feedback
name: Customer feedback
version: "2"
fields:
  - id: rating
    name: Rating
    type: rating
    required: true
  - id: complaint
    name: What went wrong?
    type: text
    hidden: true
    logic:
      conditions:
        operatorIdentifier: or
        children:
          - value:
              property_meta: {id: rating, type: rating}
              operator: lessThan
              value: 3
      actions: [show-block, require-answer]
`

const signupForm = `
- id: email
  name: Email
  type: email
  required: true
`

const staleForm = `
- id: note
  type: text
  logic:
    conditions:
      value:
        property_meta: {id: ratng, type: rating}
        operator: is_empty
    actions: [hide]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
