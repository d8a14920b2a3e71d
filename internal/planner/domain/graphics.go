package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
	"github.com/stagehandhq/stagehand/internal/platform/id"
)

// GraphicsStatus is the design pipeline state of a graphics sub-task.
type GraphicsStatus string

const (
	// GraphicsStatusRequested is the fixed initial state.
	GraphicsStatusRequested GraphicsStatus = "REQUESTED"
	// GraphicsStatusDesigning means an asset is being produced.
	GraphicsStatusDesigning GraphicsStatus = "DESIGNING"
	// GraphicsStatusReview means the asset awaits approval.
	GraphicsStatusReview GraphicsStatus = "REVIEW"
	// GraphicsStatusApproved means the asset passed review.
	GraphicsStatusApproved GraphicsStatus = "APPROVED"
	// GraphicsStatusDelivered is terminal; the final output is linked.
	GraphicsStatusDelivered GraphicsStatus = "DELIVERED"
)

var (
	// ErrGraphicsAssetTypeEmpty indicates a missing asset type.
	ErrGraphicsAssetTypeEmpty = apperrors.New(apperrors.CodeGraphicsAssetTypeEmpty, "graphics asset type is required")
	// ErrGraphicsFormatsEmpty indicates a missing formats list.
	ErrGraphicsFormatsEmpty = apperrors.New(apperrors.CodeGraphicsFormatsEmpty, "graphics formats are required")
	// ErrSubtaskInvalidStatus indicates an unrecognized sub-task status value.
	ErrSubtaskInvalidStatus = apperrors.New(apperrors.CodeSubtaskInvalidStatus, "sub-task status is not recognized")
)

// ParseGraphicsStatus validates a raw graphics status value.
func ParseGraphicsStatus(value string) (GraphicsStatus, error) {
	switch GraphicsStatus(strings.TrimSpace(value)) {
	case GraphicsStatusRequested:
		return GraphicsStatusRequested, nil
	case GraphicsStatusDesigning:
		return GraphicsStatusDesigning, nil
	case GraphicsStatusReview:
		return GraphicsStatusReview, nil
	case GraphicsStatusApproved:
		return GraphicsStatusApproved, nil
	case GraphicsStatusDelivered:
		return GraphicsStatusDelivered, nil
	default:
		return "", ErrSubtaskInvalidStatus
	}
}

// GraphicsTask is the design detail record attached 1:1 to a GRAPHICS task.
type GraphicsTask struct {
	ID              string
	TaskID          string
	AssetType       string
	Formats         []string
	Status          GraphicsStatus
	FinalOutputLink string
	OwnerID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateGraphicsTaskInput describes the fields needed to create a graphics sub-task.
type CreateGraphicsTaskInput struct {
	TaskID    string
	AssetType string
	Formats   []string
	OwnerID   string
}

// CreateGraphicsTask creates a graphics sub-task in REQUESTED.
func CreateGraphicsTask(input CreateGraphicsTaskInput, now func() time.Time, idGenerator func() (string, error)) (GraphicsTask, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.TaskID = strings.TrimSpace(input.TaskID)
	input.AssetType = strings.TrimSpace(input.AssetType)
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.TaskID == "" {
		return GraphicsTask{}, apperrors.New(apperrors.CodeSubtaskTaskIDEmpty, "sub-task task id is required")
	}
	if input.AssetType == "" {
		return GraphicsTask{}, ErrGraphicsAssetTypeEmpty
	}
	formats := normalizeFormats(input.Formats)
	if len(formats) == 0 {
		return GraphicsTask{}, ErrGraphicsFormatsEmpty
	}

	subtaskID, err := idGenerator()
	if err != nil {
		return GraphicsTask{}, fmt.Errorf("generate graphics task id: %w", err)
	}

	createdAt := now().UTC()
	return GraphicsTask{
		ID:        subtaskID,
		TaskID:    input.TaskID,
		AssetType: input.AssetType,
		Formats:   formats,
		Status:    GraphicsStatusRequested,
		OwnerID:   input.OwnerID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// GraphicsTaskPatch carries a partial update. Only non-nil fields are
// applied, so "field absent" and "field set to empty" stay distinct.
type GraphicsTaskPatch struct {
	AssetType       *string
	Formats         *[]string
	Status          *string
	FinalOutputLink *string
	OwnerID         *string
}

// ApplyGraphicsTaskPatch merges a patch into an existing record. Status
// changes are validated against the graphics pipeline order.
func ApplyGraphicsTaskPatch(existing GraphicsTask, patch GraphicsTaskPatch, now func() time.Time) (GraphicsTask, error) {
	if now == nil {
		now = time.Now
	}

	updated := existing
	if patch.AssetType != nil {
		assetType := strings.TrimSpace(*patch.AssetType)
		if assetType == "" {
			return GraphicsTask{}, ErrGraphicsAssetTypeEmpty
		}
		updated.AssetType = assetType
	}
	if patch.Formats != nil {
		formats := normalizeFormats(*patch.Formats)
		if len(formats) == 0 {
			return GraphicsTask{}, ErrGraphicsFormatsEmpty
		}
		updated.Formats = formats
	}
	if patch.Status != nil {
		target, err := ParseGraphicsStatus(*patch.Status)
		if err != nil {
			return GraphicsTask{}, err
		}
		if !isGraphicsStatusTransitionAllowed(existing.Status, target) {
			return GraphicsTask{}, apperrors.WithMetadata(
				apperrors.CodeSubtaskInvalidStatusTransition,
				fmt.Sprintf("graphics status transition not allowed: %s -> %s", existing.Status, target),
				map[string]string{"FromStatus": string(existing.Status), "ToStatus": string(target)},
			)
		}
		updated.Status = target
	}
	if patch.FinalOutputLink != nil {
		updated.FinalOutputLink = strings.TrimSpace(*patch.FinalOutputLink)
	}
	if patch.OwnerID != nil {
		updated.OwnerID = strings.TrimSpace(*patch.OwnerID)
	}
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// isGraphicsStatusTransitionAllowed reports whether a pipeline move is permitted.
func isGraphicsStatusTransitionAllowed(from, to GraphicsStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case GraphicsStatusRequested:
		return to == GraphicsStatusDesigning
	case GraphicsStatusDesigning:
		return to == GraphicsStatusReview
	case GraphicsStatusReview:
		// Review can approve or send back for rework.
		return to == GraphicsStatusApproved || to == GraphicsStatusDesigning
	case GraphicsStatusApproved:
		return to == GraphicsStatusDelivered
	default:
		// DELIVERED is terminal.
		return false
	}
}

// GraphicsParentStatus maps a graphics status to a derived parent task
// status, reporting false when no propagation applies.
func GraphicsParentStatus(status GraphicsStatus) (TaskStatus, bool) {
	if status == GraphicsStatusDelivered {
		return TaskStatusDone, true
	}
	return "", false
}

// normalizeFormats trims entries and drops empties while preserving order.
func normalizeFormats(formats []string) []string {
	normalized := make([]string, 0, len(formats))
	seen := make(map[string]bool, len(formats))
	for _, format := range formats {
		format = strings.TrimSpace(format)
		if format == "" || seen[format] {
			continue
		}
		seen[format] = true
		normalized = append(normalized, format)
	}
	return normalized
}
