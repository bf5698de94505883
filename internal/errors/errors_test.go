package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError(t *testing.T) {
	err := New(InputErrorCode, "bad input").
		WithLocation(SourceLocation{File: "Program.cs", Line: 3, Column: 7}).
		WithContext("cursor", 42).
		WithSuggestion("check the offset")

	assert.Equal(t, "Program.cs:3:7: bad input", err.Error())
	assert.Equal(t, InputErrorCode, err.ErrorCode())
	assert.Equal(t, 42, err.Context()["cursor"])
	assert.Equal(t, []string{"check the offset"}, err.Suggestions())
	assert.NotNil(t, New(UnknownErrorCode, "x").Context())
}

func TestSourceLocationString(t *testing.T) {
	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "a.cs", SourceLocation{File: "a.cs"}.String())
	assert.Equal(t, "a.cs:2", SourceLocation{File: "a.cs", Line: 2}.String())
	assert.Equal(t, "a.cs:2:5", SourceLocation{File: "a.cs", Line: 2, Column: 5}.String())
}

func TestWrappers(t *testing.T) {
	err := WrapFileSystemError("read", "missing.cs", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, FileSystemErrorCode, err.ErrorCode())
	assert.Equal(t, "missing.cs", err.Context()["path"])
	assert.Contains(t, err.Error(), "failed to read 'missing.cs'")

	invalid := InvalidOption("framework", "martini", "gin", "echo", "fiber")
	assert.Equal(t, ConfigurationErrorCode, invalid.ErrorCode())
	require.Len(t, invalid.Suggestions(), 1)
	assert.Contains(t, invalid.Suggestions()[0], "fiber")

	cursor := InvalidCursor("a.cs", 99, 10)
	assert.Equal(t, "a.cs: cursor 99 is outside the document (size 10)", cursor.Error())
}

func TestMultipleErrors(t *testing.T) {
	var errs MultipleErrors
	assert.NoError(t, errs.ErrorOrNil())
	assert.Equal(t, "no errors", errs.Error())

	errs.Add(WrapFileSystemError("read", "a.cs", fs.ErrPermission))
	assert.Equal(t, errs.Errors[0].Error(), errs.Error())

	errs.Add(New(InputErrorCode, "second"))
	require.Error(t, errs.ErrorOrNil())
	assert.Contains(t, errs.Error(), "2 errors:")
	assert.True(t, errs.HasCode(InputErrorCode))
	assert.False(t, errs.HasCode(ServerErrorCode))
	assert.ErrorIs(t, &errs, fs.ErrPermission)

	var target *BaseError
	require.True(t, stderrors.As(&errs, &target))
	assert.Equal(t, FileSystemErrorCode, target.Code)
}
