package controls

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/temirov/svnwc/internal/controls/shared"
)

const (
	manifestReadFailureTemplateConstant       = "failed to read manifest %s: %w"
	manifestParseFailureTemplateConstant      = "failed to parse manifest %s: %w"
	manifestDecodeFailureTemplateConstant     = "failed to decode manifest mapping: %w"
	unsupportedManifestFormatTemplateConstant = "unsupported manifest format %q"
	manifestEntryWithNameTemplateConstant     = "manifest entry %d (%s): %v"
	manifestEntryTemplateConstant             = "manifest entry %d: %v"
	manifestControlsMissingMessageConstant    = "manifest must provide a controls list"
	entryNameRequiredMessageConstant          = "name must be provided"
	entryTypeRequiredMessageConstant          = "type must be provided"
	entryTargetPathRequiredMessageConstant    = "target_path must be provided"
	entrySourceRequiredMessageConstant        = "exactly one of repository_url or parent_url must be provided"
	exportOnlyOptionsMessageConstant          = "force_overwrite and read_only apply only to export controls"
	unknownControlTypeTemplateConstant        = "unsupported control type %q"
	yamlManifestExtensionConstant             = ".yaml"
	shortYAMLManifestExtensionConstant        = ".yml"
	jsonManifestExtensionConstant             = ".json"
	jsoncManifestExtensionConstant            = ".jsonc"
)

// ErrManifestControlsMissing indicates the document lacks a controls list.
var ErrManifestControlsMissing = errors.New(manifestControlsMissingMessageConstant)

// ErrManifestEntryNameRequired indicates an entry without a name.
var ErrManifestEntryNameRequired = errors.New(entryNameRequiredMessageConstant)

// ErrManifestEntryTypeRequired indicates an entry without a control type.
var ErrManifestEntryTypeRequired = errors.New(entryTypeRequiredMessageConstant)

// ErrManifestEntryTargetPathRequired indicates an entry without a target path.
var ErrManifestEntryTargetPathRequired = errors.New(entryTargetPathRequiredMessageConstant)

// ErrManifestEntrySourceRequired indicates an entry with zero or two source URLs.
var ErrManifestEntrySourceRequired = errors.New(entrySourceRequiredMessageConstant)

// ErrExportOnlyOptions indicates export flags set on a checkout entry.
var ErrExportOnlyOptions = errors.New(exportOnlyOptionsMessageConstant)

// UnknownControlTypeError reports a manifest type outside checkout/export.
type UnknownControlTypeError struct {
	TypeName string
}

// Error describes the unsupported type.
func (typeError UnknownControlTypeError) Error() string {
	return fmt.Sprintf(unknownControlTypeTemplateConstant, typeError.TypeName)
}

// UnsupportedManifestFormatError reports a manifest file extension without a decoder.
type UnsupportedManifestFormatError struct {
	Extension string
}

// Error describes the unsupported extension.
func (formatError UnsupportedManifestFormatError) Error() string {
	return fmt.Sprintf(unsupportedManifestFormatTemplateConstant, formatError.Extension)
}

// ManifestEntryError identifies the manifest entry that failed validation.
// Position is one-based within the controls list.
type ManifestEntryError struct {
	Position int
	Name     string
	Cause    error
}

// Error describes the offending entry.
func (entryError ManifestEntryError) Error() string {
	if len(entryError.Name) == 0 {
		return fmt.Sprintf(manifestEntryTemplateConstant, entryError.Position, entryError.Cause)
	}
	return fmt.Sprintf(manifestEntryWithNameTemplateConstant, entryError.Position, entryError.Name, entryError.Cause)
}

// Unwrap exposes the underlying validation failure.
func (entryError ManifestEntryError) Unwrap() error {
	return entryError.Cause
}

// ManifestEntry describes one control in a manifest document.
type ManifestEntry struct {
	Name           string `json:"name" yaml:"name" mapstructure:"name"`
	Type           string `json:"type" yaml:"type" mapstructure:"type"`
	RepositoryURL  string `json:"repository_url" yaml:"repository_url" mapstructure:"repository_url"`
	ParentURL      string `json:"parent_url" yaml:"parent_url" mapstructure:"parent_url"`
	TargetPath     string `json:"target_path" yaml:"target_path" mapstructure:"target_path"`
	ForceOverwrite bool   `json:"force_overwrite" yaml:"force_overwrite" mapstructure:"force_overwrite"`
	ReadOnly       bool   `json:"read_only" yaml:"read_only" mapstructure:"read_only"`
}

// ControlType returns the normalized control type for the entry.
func (entry ManifestEntry) ControlType() (shared.ControlType, error) {
	normalizedType := strings.ToLower(strings.TrimSpace(entry.Type))
	switch normalizedType {
	case string(shared.ControlTypeCheckout):
		return shared.ControlTypeCheckout, nil
	case string(shared.ControlTypeExport):
		return shared.ControlTypeExport, nil
	case "":
		return "", ErrManifestEntryTypeRequired
	default:
		return "", UnknownControlTypeError{TypeName: entry.Type}
	}
}

func (entry ManifestEntry) validate() error {
	if len(strings.TrimSpace(entry.Name)) == 0 {
		return ErrManifestEntryNameRequired
	}
	controlType, typeError := entry.ControlType()
	if typeError != nil {
		return typeError
	}
	if len(strings.TrimSpace(entry.TargetPath)) == 0 {
		return ErrManifestEntryTargetPathRequired
	}
	hasRepositoryURL := len(strings.TrimSpace(entry.RepositoryURL)) > 0
	hasParentURL := len(strings.TrimSpace(entry.ParentURL)) > 0
	if hasRepositoryURL == hasParentURL {
		return ErrManifestEntrySourceRequired
	}
	if controlType == shared.ControlTypeCheckout && (entry.ForceOverwrite || entry.ReadOnly) {
		return ErrExportOnlyOptions
	}
	return nil
}

// Manifest is the declarative list of controls.
type Manifest struct {
	Controls []ManifestEntry `json:"controls" yaml:"controls" mapstructure:"controls"`
}

// Validate checks every entry and the document-level name uniqueness invariant.
func (manifest Manifest) Validate() error {
	if manifest.Controls == nil {
		return ErrManifestControlsMissing
	}

	seenNames := map[string]struct{}{}
	for entryIndex, entry := range manifest.Controls {
		entryPosition := entryIndex + 1
		trimmedName := strings.TrimSpace(entry.Name)
		if validationError := entry.validate(); validationError != nil {
			return ManifestEntryError{Position: entryPosition, Name: trimmedName, Cause: validationError}
		}
		if _, seen := seenNames[trimmedName]; seen {
			return ManifestEntryError{Position: entryPosition, Name: trimmedName, Cause: DuplicateControlNameError{ControlName: trimmedName}}
		}
		seenNames[trimmedName] = struct{}{}
	}
	return nil
}

// LoadManifest reads and validates a manifest document. YAML (.yaml/.yml),
// JSON (.json), and JSON-with-comments (.jsonc) files are supported.
func LoadManifest(manifestPath string) (Manifest, error) {
	documentBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadFailureTemplateConstant, manifestPath, readError)
	}

	manifest, parseError := parseManifestDocument(manifestPath, documentBytes)
	if parseError != nil {
		return Manifest{}, parseError
	}
	if validationError := manifest.Validate(); validationError != nil {
		return Manifest{}, validationError
	}
	return manifest, nil
}

func parseManifestDocument(manifestPath string, documentBytes []byte) (Manifest, error) {
	manifest := Manifest{}
	extension := strings.ToLower(filepath.Ext(manifestPath))
	switch extension {
	case yamlManifestExtensionConstant, shortYAMLManifestExtensionConstant:
		if unmarshalError := yaml.Unmarshal(documentBytes, &manifest); unmarshalError != nil {
			return Manifest{}, fmt.Errorf(manifestParseFailureTemplateConstant, manifestPath, unmarshalError)
		}
	case jsonManifestExtensionConstant, jsoncManifestExtensionConstant:
		if unmarshalError := json.Unmarshal(jsonc.ToJSON(documentBytes), &manifest); unmarshalError != nil {
			return Manifest{}, fmt.Errorf(manifestParseFailureTemplateConstant, manifestPath, unmarshalError)
		}
	default:
		return Manifest{}, UnsupportedManifestFormatError{Extension: extension}
	}
	return manifest, nil
}

// ParseManifestMap decodes an in-memory mapping into a validated manifest.
func ParseManifestMap(document map[string]any) (Manifest, error) {
	manifest := Manifest{}
	if decodeError := mapstructure.Decode(document, &manifest); decodeError != nil {
		return Manifest{}, fmt.Errorf(manifestDecodeFailureTemplateConstant, decodeError)
	}
	if validationError := manifest.Validate(); validationError != nil {
		return Manifest{}, validationError
	}
	return manifest, nil
}
