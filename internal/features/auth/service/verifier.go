package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "coin-rewards-backend/internal/common/errors"
	"coin-rewards-backend/internal/features/auth/models"
)

// IdentityVerifier validates the integrity of a Telegram Mini App init data
// payload and extracts the user identity from it. The payload arrives from
// an untrusted client before any session exists, so nothing in it is
// believed until the signature checks out.
type IdentityVerifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIdentityVerifier derives the signing secret as
// HMAC-SHA256(key="WebAppData", message=botToken). The bot token itself is
// never sent anywhere. ttl bounds the age of the payload's auth_date;
// zero disables the freshness check and keeps payloads replayable.
func NewIdentityVerifier(botToken string, ttl time.Duration) *IdentityVerifier {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))

	return &IdentityVerifier{
		secret: mac.Sum(nil),
		ttl:    ttl,
		now:    time.Now,
	}
}

// telegramUser is the JSON user descriptor embedded in init data.
type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Verify checks the payload signature against the derived secret and, on
// success, parses the embedded user descriptor into an Identity.
func (v *IdentityVerifier) Verify(initData string) (*models.Identity, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAuthInvalidSignature, "init data is not a valid query string")
	}

	// Canonical string: drop the hash field, sort the rest by key,
	// join as key=value lines. Field order on the wire is irrelevant.
	type pair struct{ k, v string }
	pairs := make([]pair, 0, len(values))
	var gotHash string
	for k, vs := range values {
		if k == "hash" {
			gotHash = vs[0]
			continue
		}
		pairs = append(pairs, pair{k: k, v: vs[0]})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = p.k + "=" + p.v
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.Join(lines, "\n")))
	want := hex.EncodeToString(mac.Sum(nil))

	// A missing hash field compares as a mismatch, never as a skip.
	if gotHash == "" || !hmac.Equal([]byte(want), []byte(gotHash)) {
		return nil, apperrors.New(apperrors.ErrCodeAuthInvalidSignature, "init data signature mismatch")
	}

	if v.ttl > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil || v.now().Sub(time.Unix(authDate, 0)) > v.ttl {
			return nil, apperrors.New(apperrors.ErrCodeAuthExpired, "init data is too old")
		}
	}

	// A missing user field parses as an empty object; its zero id is
	// rejected below instead of leaking into the system as an identity.
	raw := values.Get("user")
	if raw == "" {
		raw = "{}"
	}

	var tu telegramUser
	if err := json.Unmarshal([]byte(raw), &tu); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAuthMalformedUser, "user descriptor is not valid JSON")
	}
	if tu.ID == 0 {
		return nil, apperrors.New(apperrors.ErrCodeAuthMalformedUser, "user descriptor has no id")
	}

	displayName := strings.TrimSpace(tu.FirstName + " " + tu.LastName)
	if displayName == "" {
		displayName = "Guest"
	}

	username := ""
	if tu.Username != "" {
		username = "@" + tu.Username
	}

	return &models.Identity{
		ID:          strconv.FormatInt(tu.ID, 10),
		DisplayName: displayName,
		Username:    username,
	}, nil
}
