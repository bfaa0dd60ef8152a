package matching

import "github.com/google/uuid"

// matchNamespace seeds match IDs so the same startup and thesis always
// produce the same ID, including across job retries.
var matchNamespace = uuid.MustParse("5b0e7c1e-3f0a-4d53-9f6c-2b8f0d6e4a11")

// MatchID derives a stable UUID for a startup and thesis pair.
func MatchID(startupID, thesisID string) string {
	return uuid.NewSHA1(matchNamespace, []byte(startupID+"/"+thesisID)).String()
}
