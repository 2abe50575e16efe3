package parser

type txtParser struct{}

func (txtParser) CanParse(filename string) bool { return hasExt(filename, ".txt", ".log") }

func (txtParser) Parse(content []byte) (string, error) {
	return normalizeNewlines(content), nil
}
