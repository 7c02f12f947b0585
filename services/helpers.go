package services

import (
	"fmt"
	"strings"
	"time"
)

// --- Общие хелперы ---

const dateLayout = "2006-01-02"

// requireFields возвращает ошибку по первому пустому полю в алфавитном порядке.
func requireFields(fields map[string]string) error {
	var missing *FieldError
	for name, value := range fields {
		if strings.TrimSpace(value) != "" {
			continue
		}
		if missing == nil || name < missing.Field {
			missing = &FieldError{Field: name, Message: "required"}
		}
	}
	if missing != nil {
		return missing
	}
	return nil
}

func validateDate(field, value string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(value)); err != nil {
		return &FieldError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

func positiveOrNil(field string, v *int) error {
	if v != nil && *v <= 0 {
		return &FieldError{Field: field, Message: "must be a positive integer"}
	}
	return nil
}

// GetExtensionFromContentType подбирает расширение файла по MIME типу изображения.
func GetExtensionFromContentType(contentType string) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && parts[0] == "image" && parts[1] != "" {
			// "image/svg+xml" -> ".svg"
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
