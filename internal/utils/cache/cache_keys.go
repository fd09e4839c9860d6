package cache

import (
	"fmt"
	"strings"
)

type EntityType string

const (
	EntityUser      EntityType = "user"
	EntityDashboard EntityType = "dashboard"
)

type KeyType string

const (
	KeyID     KeyType = "id"
	KeyEmail  KeyType = "email"
	KeyPhone  KeyType = "phone"
	KeyPeriod KeyType = "period"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

// ParseKey extracts components from a cache key
func ParseKey(key string) map[string]string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return nil
	}

	result := make(map[string]string)
	result["entity"] = parts[0]

	for i := 1; i+1 < len(parts); i += 2 {
		result[parts[i]] = parts[i+1]
	}

	return result
}
