package testserver

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

const maxOTPAttempts = 5

type user struct {
	id            string
	loginID       string
	name          string
	email         string
	phone         string
	verifiedEmail bool
	verifiedPhone bool
	passwordHash  []byte
	totpSecret    string
	seen          bool
}

func (u *user) info() map[string]any {
	return map[string]any{
		"userId":        u.id,
		"loginIds":      []string{u.loginID},
		"name":          u.name,
		"email":         u.email,
		"verifiedEmail": u.verifiedEmail,
		"phone":         u.phone,
		"verifiedPhone": u.verifiedPhone,
	}
}

type pendingOTP struct {
	code     string
	attempts int
}

type pendingLink struct {
	loginID   string
	token     string
	confirmed bool
}

// store holds every piece of mutable server state behind one mutex. The test
// server never sees enough load for finer locking to matter.
type store struct {
	mu sync.Mutex

	users         map[string]*user // keyed by login ID
	refreshTokens map[string]*user
	otps          map[string]*pendingOTP // keyed by login ID
	magicTokens   map[string]string      // token -> login ID
	links         map[string]*pendingLink
	exchangeCodes map[string]string // code -> login ID
	accessKeys    map[string]string // key -> login ID
}

func newStore() *store {
	return &store{
		users:         make(map[string]*user),
		refreshTokens: make(map[string]*user),
		otps:          make(map[string]*pendingOTP),
		magicTokens:   make(map[string]string),
		links:         make(map[string]*pendingLink),
		exchangeCodes: make(map[string]string),
		accessKeys:    make(map[string]string),
	}
}

// upsertUser fetches the user for a login ID, creating it when allowed.
func (st *store) upsertUser(loginID string, create bool) *user {
	st.mu.Lock()
	defer st.mu.Unlock()

	if u, ok := st.users[loginID]; ok {
		return u
	}
	if !create {
		return nil
	}
	u := &user{
		id:      ulid.Make().String(),
		loginID: loginID,
	}
	st.users[loginID] = u
	return u
}

func (st *store) userByRefreshToken(token string) *user {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.refreshTokens[token]
}

func (st *store) issueRefreshToken(u *user) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	token := "R." + ulid.Make().String()
	st.refreshTokens[token] = u
	return token
}

func (st *store) revokeRefreshToken(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.refreshTokens, token)
}
