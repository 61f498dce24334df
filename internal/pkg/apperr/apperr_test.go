package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorCollectsFields(t *testing.T) {
	verr := Validation("Validation Error")
	assert.Nil(t, verr.OrNil())

	verr.Add("title", "Please provide a title")
	verr.Add("content", "Please provide content")

	err := verr.OrNil()
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, []string{"Please provide a title", "Please provide content"}, verr.Messages())
	assert.Contains(t, err.Error(), "title: Please provide a title")
}

func TestIsDuplicateMatchesField(t *testing.T) {
	err := fmt.Errorf("insert post: %w", Duplicate("slug", errors.New("E11000")))

	assert.True(t, IsDuplicate(err, ""))
	assert.True(t, IsDuplicate(err, "slug"))
	assert.False(t, IsDuplicate(err, "email"))
	assert.False(t, IsDuplicate(errors.New("boom"), ""))
}

func TestKindsAreDistinct(t *testing.T) {
	nf := NotFound("post")
	auth := Unauthorized("Not authorized to update this post")

	assert.True(t, IsNotFound(nf))
	assert.False(t, IsAuthorization(nf))
	assert.True(t, IsAuthorization(auth))
	assert.False(t, IsNotFound(auth))
	assert.Equal(t, "post not found", nf.Error())
}
