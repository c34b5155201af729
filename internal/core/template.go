package core

import "strings"

// substitute scans tmpl left to right exactly once, replacing each
// placeholder with its paired value as it is encountered. Manifest
// validation already guarantees each required placeholder occurs
// exactly once, but substitute does not rely on that for safety: text
// injected by one placeholder's replacement is never itself rescanned
// for a later placeholder, because the scan only ever advances through
// the original tmpl.
func substitute(tmpl string, pairs ...[2]string) string {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		matched := false
		for _, pair := range pairs {
			placeholder := pair[0]
			if placeholder == "" {
				continue
			}
			if strings.HasPrefix(tmpl[i:], placeholder) {
				out.WriteString(pair[1])
				i += len(placeholder)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		out.WriteByte(tmpl[i])
		i++
	}
	return out.String()
}
