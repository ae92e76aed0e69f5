package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Block is the result of splitting a document into YAML front matter and body.
type Block struct {
	// Raw is the YAML between the delimiters, without the delimiters.
	Raw []byte
	// Body is everything after the closing delimiter, or the whole input when
	// Present is false.
	Body []byte
	// Present reports whether the document opened with a front matter block.
	Present bool
	// Newline is the line terminator detected in the document ("\n" or "\r\n").
	Newline string
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// A document that does not start with `---` followed by a newline has no
// front matter; Body is then the full input.
func Split(content []byte) (Block, error) {
	nl := detectNewline(content)
	block := Block{Body: content, Newline: nl}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return block, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		block.Raw = []byte{}
		block.Body = content[start+len(open):]
		block.Present = true
		return block, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line without a trailing newline.
		closeEOF := []byte(nl + "---")
		if bytes.HasSuffix(content[start:], closeEOF) {
			end := len(content) - len(closeEOF)
			block.Raw = content[start : end+len(nl)]
			block.Body = []byte{}
			block.Present = true
			return block, nil
		}
		return Block{Newline: nl}, ErrMissingClosingDelimiter
	}

	block.Raw = content[start : start+idx+len(nl)]
	block.Body = content[start+idx+len(closeSeq):]
	block.Present = true
	return block, nil
}

// Decode unmarshals the raw YAML into out. An empty block leaves out untouched.
func (b Block) Decode(out any) error {
	if len(bytes.TrimSpace(b.Raw)) == 0 {
		return nil
	}
	return yaml.Unmarshal(b.Raw, out)
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
