package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"housetab-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondStatusUpdateError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "compare-and-swap miss is a conflict",
			err:      fmt.Errorf("%w: item abc is no longer pending", services.ErrStatusConflict),
			wantCode: http.StatusConflict,
		},
		{
			name:     "database failure is internal",
			err:      errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondStatusUpdateError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
