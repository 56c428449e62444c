// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"fmt"
	"time"
)

// Limits applied to untrusted protocol input.
const (
	MaxImageDimension = 8192
	MaxImageArea      = 16 * 1024 * 1024
	MaxScaleFactor    = 64
	MaxCommandValue   = 1 << 31
)

// InputValidator validates protocol input and configuration values.
type InputValidator struct{}

// newInputValidator creates a new input validator.
func newInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateDimensions validates image dimensions.
func (iv *InputValidator) ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return validationError("InputValidator.ValidateDimensions",
			fmt.Sprintf("image dimensions must be positive, got %dx%d", width, height), nil)
	}

	if width > MaxImageDimension || height > MaxImageDimension {
		return validationError("InputValidator.ValidateDimensions",
			fmt.Sprintf("image dimensions too large: %dx%d (max %d)",
				width, height, MaxImageDimension), nil)
	}

	area := int64(width) * int64(height)
	if area > MaxImageArea {
		return validationError("InputValidator.ValidateDimensions",
			fmt.Sprintf("image area too large: %d pixels (max %d)", area, MaxImageArea), nil)
	}

	return nil
}

// ValidateScale validates an integer upscale or display scale factor.
func (iv *InputValidator) ValidateScale(scale int) error {
	if scale < 1 || scale > MaxScaleFactor {
		return validationError("InputValidator.ValidateScale",
			fmt.Sprintf("scale factor must be 1-%d, got %d", MaxScaleFactor, scale), nil)
	}
	return nil
}

// ValidateCommandValue validates an integer field of an input command.
func (iv *InputValidator) ValidateCommandValue(name string, v int64) error {
	if v >= MaxCommandValue || v < -MaxCommandValue {
		return validationError("InputValidator.ValidateCommandValue",
			fmt.Sprintf("%s out of range: %d", name, v), nil)
	}
	return nil
}

// ValidateDuration validates that a configured duration is positive.
func (iv *InputValidator) ValidateDuration(name string, d time.Duration) error {
	if d <= 0 {
		return validationError("InputValidator.ValidateDuration",
			fmt.Sprintf("%s must be positive, got %v", name, d), nil)
	}
	return nil
}

// ValidateSize validates a configured buffer size.
func (iv *InputValidator) ValidateSize(name string, size, maxSize int) error {
	if size <= 0 {
		return validationError("InputValidator.ValidateSize",
			fmt.Sprintf("%s must be positive, got %d", name, size), nil)
	}
	if maxSize > 0 && size > maxSize {
		return validationError("InputValidator.ValidateSize",
			fmt.Sprintf("%s too large: %d (max %d)", name, size, maxSize), nil)
	}
	return nil
}
