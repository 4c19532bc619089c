package userstats

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// Fingerprint identifies an archive from its length and the ids of its first
// and last conversations. ok is false for an empty archive, which must not be
// persisted.
func Fingerprint(conversations []chatexport.Conversation) (hash string, ok bool) {
	if len(conversations) == 0 {
		return "", false
	}

	key := fmt.Sprintf("%d:%s:%s", len(conversations), conversations[0].ID, conversations[len(conversations)-1].ID)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]), true
}
