// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FarmersMark Contributors

package errors

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeCLISetupFailure  Code = "cli.setup.failure"
	CodeCLIInputInvalid  Code = "cli.input.invalid"
	CodeCLIWizardAborted Code = "cli.wizard.aborted"

	CodeStoragePathInvalid    Code = "storage.path.invalid"
	CodeStorageBucketNotFound Code = "storage.bucket.get.not_found"
	CodeStorageAccessDenied   Code = "storage.bucket.access.denied"
	CodeStorageListFailure    Code = "storage.objects.list.failure"
	CodeStorageClientFailure  Code = "storage.client.create.failure"

	CodeCorpusCreateFailure  Code = "corpus.create.failure"
	CodeCorpusCreateConflict Code = "corpus.create.conflict"
	CodeCorpusGetNotFound    Code = "corpus.get.not_found"
	CodeCorpusListFailure    Code = "corpus.list.failure"
	CodeCorpusDeleteFailure  Code = "corpus.delete.failure"
	CodeCorpusAccessDenied   Code = "corpus.access.denied"

	CodeImportRequestInvalid  Code = "import.request.invalid"
	CodeImportUpstreamFailure Code = "import.upstream.failure"
	CodeImportTimeout         Code = "import.call.timeout"

	CodePreflightEmbeddingFailure Code = "preflight.embedding.failure"
	CodePreflightClientFailure    Code = "preflight.client.create.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldProject(value string) Attr {
	return Field("project", value)
}

func FieldBucket(value string) Attr {
	return Field("bucket", value)
}

func FieldCorpus(value string) Attr {
	return Field("corpus", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsConflict(err error) bool {
	return reason(CodeOf(err)) == "conflict"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsAccessDenied(err error) bool {
	return reason(CodeOf(err)) == "denied"
}

func IsTimeout(err error) bool {
	return reason(CodeOf(err)) == "timeout"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
