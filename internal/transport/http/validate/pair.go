package validate

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/fleshka4/pair-explorer/internal/ethaddr"
	"github.com/fleshka4/pair-explorer/internal/transport/http/dto"
)

// AddressQueryValidate checks the request method and extracts the optional
// address query parameter.
func AddressQueryValidate(r *http.Request, method string) (*dto.AddressQuery, int, error) {
	if r.Method != method {
		return nil, http.StatusMethodNotAllowed, errors.New("method not allowed")
	}

	values, ok := r.URL.Query()["address"]
	if !ok {
		return &dto.AddressQuery{}, 0, nil
	}
	if len(values) > 1 {
		return nil, http.StatusBadRequest, errors.New("duplicate address param")
	}
	return &dto.AddressQuery{
		Address: strings.TrimSpace(values[0]),
		Present: true,
	}, 0, nil
}

// PairRequestValidate validates /pair request and returns dto.
func PairRequestValidate(r *http.Request) (*dto.PairRequest, int, error) {
	q, code, err := AddressQueryValidate(r, http.MethodGet)
	if err != nil {
		return nil, code, err
	}
	if q.Address == "" {
		return nil, http.StatusBadRequest, errors.New("missing address param")
	}
	if !ethaddr.Valid(q.Address) {
		return nil, http.StatusBadRequest, errors.New("bad address format")
	}
	return &dto.PairRequest{Address: q.Address}, 0, nil
}
