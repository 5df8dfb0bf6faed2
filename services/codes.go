package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	OrderCodePrefix = "ORD-"
	StaffCodePrefix = "STF-"

	maxCodeAttempts = 5
)

// CodeGenerator returns a fresh random code body
type CodeGenerator func() (string, error)

// RandomHex returns 8 upper-case hex digits
func RandomHex() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// uniqueCode draws prefixed codes until one is unused in table.code. The
// unique index on the column still rejects a concurrent duplicate.
func uniqueCode(tx *gorm.DB, gen CodeGenerator, prefix string, model interface{}) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		body, err := gen()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		code := prefix + body

		var count int64
		if err := tx.Model(model).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: no free %scode after %d attempts", ErrPersistence, prefix, maxCodeAttempts)
}
