package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "invalid selection: please select a station",
		Errorf(KindInvalidSelection, "please select a station").Error())
	assert.Equal(t, "No data found for station X",
		Errorf(KindServerReportedError, "No data found for station X").Error())
	assert.Equal(t, "no stations available", (&Error{Kind: KindNoStations}).Error())
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("load: %w", WrapError(KindTransport, "GET /load_data", cause))

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(cause))
}
