// Package codec is the wire format of parse requests on every queue backend.
package codec

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

func Encode(req domain.ParseRequest) ([]byte, error) {
	if strings.TrimSpace(req.JobID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode parse request", fmt.Errorf("job id is required"))
	}
	data, err := msgpack.Marshal(&req)
	if err != nil {
		return nil, fmt.Errorf("encode parse request: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (domain.ParseRequest, error) {
	var req domain.ParseRequest
	if err := msgpack.Unmarshal(data, &req); err != nil {
		return domain.ParseRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode parse request", err)
	}
	if strings.TrimSpace(req.JobID) == "" {
		return domain.ParseRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode parse request", fmt.Errorf("job id is empty"))
	}
	return req, nil
}
