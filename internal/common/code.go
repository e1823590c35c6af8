package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentCode builds a human-readable document number like
// PR-20260115-3FA2C1. The random suffix keeps same-day documents unique
// without a sequence table.
func DocumentCode(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), suffix)
}
