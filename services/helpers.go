package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zdenkokanos/MTAA-backend/metrics"
	"github.com/zdenkokanos/MTAA-backend/models"
	"github.com/zdenkokanos/MTAA-backend/storage"
)

var errorKinds = []error{
	ErrNotFound, ErrConflict, ErrCapacity, ErrUnavailable,
	ErrInvalidInput, ErrForbidden, ErrUnauthorized,
}

func hasKind(err error) bool {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// classify оставляет ошибки таксономии как есть, остальные становятся ErrUnavailable.
func classify(op string, err error) error {
	if err == nil || hasKind(err) {
		return err
	}
	return unavailable(op, err)
}

// outcomeOf возвращает метку исхода для метрик.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrCapacity):
		return metrics.OutcomeCapacity
	case errors.Is(err, ErrUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

// logOutcome пишет ошибку операции с уровнем по её виду:
// ожидаемые клиентские ошибки - Info, сбои хранилища - Error.
func logOutcome(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if logger == nil || err == nil {
		return
	}
	level := slog.LevelInfo
	if errors.Is(err, ErrUnavailable) || !hasKind(err) {
		level = slog.LevelError
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	logger.LogAttrs(ctx, level, msg, attrs...)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func populateTournamentImageURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil && t.ImageKey != nil && *t.ImageKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*t.ImageKey); url != "" {
			t.ImageURL = &url
		}
	}
}

func populateUserDetails(u *models.User, uploader storage.FileUploader) {
	if u == nil {
		return
	}
	u.PasswordHash = "" // Важно для безопасности
	if u.ImageKey != nil && *u.ImageKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*u.ImageKey); url != "" {
			u.ImageURL = &url
		}
	}
}

// GetExtensionFromContentType определяет расширение файла изображения.
func GetExtensionFromContentType(contentType string) (string, error) {
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
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImageType, contentType)
	}
}
