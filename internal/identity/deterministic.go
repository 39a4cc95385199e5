package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a stable UUID from key with go-hashid. Keys must carry a
// type prefix so different entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DefaultCategoryUUID identifies a seeded category of a world. Seeding the
// same world twice yields the same ids.
func DefaultCategoryUUID(worldID uuid.UUID, name string) uuid.UUID {
	return UUID("codice:category:" + worldID.String() + ":" + strings.ToLower(strings.TrimSpace(name)))
}

// FieldDefinitionUUID identifies a custom field by world and name.
func FieldDefinitionUUID(worldID uuid.UUID, name string) uuid.UUID {
	return UUID("codice:field:" + worldID.String() + ":" + strings.ToLower(strings.TrimSpace(name)))
}
