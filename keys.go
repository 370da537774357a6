/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kvmodels

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "kvmodels"

const keySeparator = ":"

// sanitizePrefix strips the key separator from a prefix, warning when it
// has to change anything. An empty prefix falls back to DefaultPrefix.
func sanitizePrefix(prefix string, logger *slog.Logger) string {
	if prefix == "" {
		return DefaultPrefix
	}
	if strings.Contains(prefix, keySeparator) {
		logger.Warn("prefix can not contain the key separator, stripping it", "prefix", prefix)
		prefix = strings.ReplaceAll(prefix, keySeparator, "")
		if prefix == "" {
			return DefaultPrefix
		}
	}
	return prefix
}

// recordKey builds the storage key of one record.
func recordKey(prefix, model string, id int64) string {
	return fmt.Sprintf("%s:%s:%d", prefix, model, id)
}

// recordPattern builds the enumeration pattern for all records of a model.
func recordPattern(prefix, model string) string {
	return fmt.Sprintf("%s:%s:*", prefix, model)
}

// parseRecordKey splits a record key into its model tag and id.
func parseRecordKey(key string) (model string, id int64, err error) {
	parts := strings.Split(key, keySeparator)
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("malformed record key %q", key)
	}
	id, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("record key %q has non-numeric id", key)
	}
	return parts[1], id, nil
}
