package auth

import "strings"

// Allowlist は登録・ログインを許可する組織メールドメインの集合。
// 大文字小文字を区別せずに照合する。
type Allowlist struct {
	domains map[string]struct{}
}

// NewAllowlist はAllowlistを生成する。
func NewAllowlist(domains []string) *Allowlist {
	m := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			m[d] = struct{}{}
		}
	}
	return &Allowlist{domains: m}
}

// Allows はメールアドレスのドメインが許可リストに含まれるかを返す。
// "@"を含まない不正なアドレスは常に拒否する。
func (a *Allowlist) Allows(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	_, ok := a.domains[domain]
	return ok
}
