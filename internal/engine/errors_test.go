package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrWrongPhase, KindPhase},
		{ErrNotYourTurn, KindTurn},
		{ErrEliminated, KindAuthorization},
		{ErrInvalidTarget, KindValidation},
		{fmt.Errorf("vote: %w", ErrEmptyClue), KindValidation},
		{NewError(KindNotFound, "room not found"), KindNotFound},
	}
	for _, tt := range tests {
		got, ok := KindOf(tt.err)
		assert.True(t, ok, tt.err.Error())
		assert.Equal(t, tt.want, got, tt.err.Error())
	}

	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "turn", KindTurn.String())
}
