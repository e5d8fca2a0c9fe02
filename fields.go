package termline

// Fields splits a submitted line into arguments. Double quotes group
// words and a backslash escapes the next character; both are consumed.
// Unquoted runs of spaces separate fields without producing any, while an
// explicitly quoted empty string survives as an empty field.
func Fields(line string) []string {
	var args []string
	var arg []rune
	inString := false
	escaped := false
	quoted := false
	for _, r := range line {
		if escaped {
			arg = append(arg, r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
			quoted = true
		case ' ':
			if inString {
				arg = append(arg, r)
				continue
			}
			if len(arg) > 0 || quoted {
				args = append(args, string(arg))
			}
			arg = arg[:0]
			quoted = false
		default:
			arg = append(arg, r)
		}
	}
	if len(arg) > 0 || quoted {
		args = append(args, string(arg))
	}
	return args
}
