// Package storage provides the local persistence layer for the closet application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/virtualcloset/closet/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidItem      = errors.New("invalid item")
	ErrInvalidCapsule   = errors.New("invalid capsule")
	ErrInvalidOutfit    = errors.New("invalid outfit")
	ErrInvalidWearEvent = errors.New("invalid wear event")
	ErrInvalidPrefs     = errors.New("invalid preferences")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateItem(item *model.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if item.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidItem)
	}
	if item.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidItem)
	}
	if item.Status != model.StatusActive && item.Status != model.StatusArchived {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidItem, item.Status)
	}
	if item.WearCount < 0 {
		return fmt.Errorf("%w: negative wear count", ErrInvalidItem)
	}
	if item.CreatedAt == 0 || item.UpdatedAt == 0 {
		return fmt.Errorf("%w: missing timestamps", ErrInvalidItem)
	}
	return nil
}

func validateCapsule(capsule *model.Capsule) error {
	if capsule == nil {
		return fmt.Errorf("%w: capsule", ErrNilParameter)
	}
	if capsule.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCapsule)
	}
	if capsule.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCapsule)
	}
	if capsule.UpdatedAt == 0 {
		return fmt.Errorf("%w: missing updated timestamp", ErrInvalidCapsule)
	}
	return nil
}

func validateOutfit(outfit *model.Outfit) error {
	if outfit == nil {
		return fmt.Errorf("%w: outfit", ErrNilParameter)
	}
	if outfit.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidOutfit)
	}
	if len(outfit.ItemIDs) == 0 {
		return fmt.Errorf("%w: no item ids", ErrInvalidOutfit)
	}
	if outfit.Occasion == "" {
		return fmt.Errorf("%w: missing occasion", ErrInvalidOutfit)
	}
	if outfit.CreatedAt == 0 || outfit.UpdatedAt == 0 {
		return fmt.Errorf("%w: missing timestamps", ErrInvalidOutfit)
	}
	return nil
}

func validateWearEvent(event *model.WearEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if event.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidWearEvent)
	}
	if event.OutfitID == "" {
		return fmt.Errorf("%w: missing outfit ID", ErrInvalidWearEvent)
	}
	if event.WornAt == 0 {
		return fmt.Errorf("%w: missing worn timestamp", ErrInvalidWearEvent)
	}
	if len(event.ItemIDsSnapshot) == 0 {
		return fmt.Errorf("%w: empty item snapshot", ErrInvalidWearEvent)
	}
	return nil
}

func validatePrefs(prefs *model.UserPrefs) error {
	if prefs == nil {
		return fmt.Errorf("%w: prefs", ErrNilParameter)
	}
	if prefs.AvoidRepeatDays < 0 {
		return fmt.Errorf("%w: negative avoid repeat days", ErrInvalidPrefs)
	}
	return nil
}
