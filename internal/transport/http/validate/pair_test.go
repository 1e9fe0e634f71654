package validate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pair = "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"

func TestPairRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		rawQuery       string
		method         string
		expectedStatus int
		wantErr        assert.ErrorAssertionFunc
	}{
		{
			name:           "valid request",
			rawQuery:       "address=" + pair,
			method:         http.MethodGet,
			expectedStatus: 0,
			wantErr:        assert.NoError,
		},
		{
			name:           "wrong http method",
			rawQuery:       "address=" + pair,
			method:         http.MethodPost,
			expectedStatus: http.StatusMethodNotAllowed,
			wantErr:        assert.Error,
		},
		{
			name:           "missing address parameter",
			rawQuery:       "",
			method:         http.MethodGet,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "empty address parameter",
			rawQuery:       "address=",
			method:         http.MethodGet,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "invalid address format",
			rawQuery:       "address=invalid_address",
			method:         http.MethodGet,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "mixed case with bad checksum",
			rawQuery:       "address=0xb4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc",
			method:         http.MethodGet,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "duplicate address parameter",
			rawQuery:       "address=" + pair + "&address=" + pair,
			method:         http.MethodGet,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/pair", nil)
			req.URL.RawQuery = tt.rawQuery

			result, status, err := PairRequestValidate(req)

			tt.wantErr(t, err)
			require.Equal(t, tt.expectedStatus, status)

			if err == nil {
				require.NotNil(t, result)
				require.Equal(t, pair, result.Address)
			} else {
				require.Nil(t, result)
			}
		})
	}
}

func TestAddressQueryValidate(t *testing.T) {
	t.Parallel()

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/session/fetch", nil)
		q, status, err := AddressQueryValidate(req, http.MethodPost)
		require.NoError(t, err)
		require.Zero(t, status)
		require.False(t, q.Present)
	})

	t.Run("present and trimmed", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPut, "/session/address?address=%20abc%20", nil)
		q, _, err := AddressQueryValidate(req, http.MethodPut)
		require.NoError(t, err)
		require.True(t, q.Present)
		require.Equal(t, "abc", q.Address)
	})

	t.Run("different http methods", func(t *testing.T) {
		t.Parallel()

		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			t.Run(method, func(t *testing.T) {
				req := httptest.NewRequest(method, "/session/fetch", nil)
				q, status, err := AddressQueryValidate(req, http.MethodPost)
				require.Error(t, err)
				require.Equal(t, http.StatusMethodNotAllowed, status)
				require.Nil(t, q)
			})
		}
	})
}
