package cache

// matchGlob reports whether key matches a Redis KEYS style pattern: '*' matches any run
// of bytes, '?' a single byte, "[...]" a class (with '^' negation and 'a-z' ranges) and
// '\' escapes the next byte.
func matchGlob(pattern, key string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchGlob(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(key) == 0 {
				return false
			}
			pattern, key = pattern[1:], key[1:]
		case '[':
			if len(key) == 0 {
				return false
			}
			matched, rest, ok := matchClass(pattern[1:], key[0])
			if !ok {
				// unterminated class, '[' is a literal
				if key[0] != '[' {
					return false
				}
				pattern, key = pattern[1:], key[1:]
				continue
			}
			if !matched {
				return false
			}
			pattern, key = rest, key[1:]
		case '\\':
			if len(pattern) >= 2 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
			pattern, key = pattern[1:], key[1:]
		}
	}
	return len(key) == 0
}

// matchClass evaluates the class body that follows '['. It returns the remaining pattern
// after the closing ']' and ok=false if the class is unterminated.
func matchClass(p string, c byte) (matched bool, rest string, ok bool) {
	negate := false
	if len(p) > 0 && p[0] == '^' {
		negate = true
		p = p[1:]
	}

	i := 0
	for i < len(p) && p[i] != ']' {
		switch {
		case p[i] == '\\' && i+1 < len(p):
			if p[i+1] == c {
				matched = true
			}
			i += 2
		case i+2 < len(p) && p[i+1] == '-' && p[i+2] != ']':
			lo, hi := p[i], p[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			i += 3
		default:
			if p[i] == c {
				matched = true
			}
			i++
		}
	}
	if i >= len(p) {
		return false, "", false
	}
	if negate {
		matched = !matched
	}
	return matched, p[i+1:], true
}
