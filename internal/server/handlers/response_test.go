package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/service/inventory"
)

func TestFail_MapsKindsToStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   models.Kind
		wantMsg    string
	}{
		{name: "not found", err: models.NewError(models.KindNotFound, "Order not found"), wantStatus: http.StatusNotFound, wantCode: models.KindNotFound, wantMsg: "Order not found"},
		{name: "validation", err: models.NewError(models.KindValidation, "bad"), wantStatus: http.StatusBadRequest, wantCode: models.KindValidation, wantMsg: "bad"},
		{name: "invalid product", err: models.NewError(models.KindInvalidProduct, "nope"), wantStatus: http.StatusUnprocessableEntity, wantCode: models.KindInvalidProduct, wantMsg: "nope"},
		{
			name:       "shortage",
			err:        &inventory.ShortageError{Product: "Bread", Requested: 3, Remaining: 2},
			wantStatus: http.StatusConflict,
			wantCode:   models.KindInsufficientInventory,
			wantMsg:    "insufficient inventory for Bread: requested 3, remaining 2",
		},
		{name: "forbidden", err: models.NewError(models.KindForbidden, "no"), wantStatus: http.StatusForbidden, wantCode: models.KindForbidden, wantMsg: "no"},
		{name: "unavailable", err: models.NewError(models.KindUnavailable, "off"), wantStatus: http.StatusServiceUnavailable, wantCode: models.KindUnavailable, wantMsg: "off"},
		{
			name:       "infrastructure error is hidden",
			err:        fmt.Errorf("save orders: %w", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   models.KindInternal,
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			fail(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, string(tt.wantCode), body["code"])
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}
