package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"deltas":[]}`)
	valid := Sign("secret", body)

	tests := []struct {
		name      string
		body      []byte
		signature string
		wantErr   bool
	}{
		{name: "valid", body: body, signature: valid},
		{name: "tampered body", body: []byte(`{"deltas":[{}]}`), signature: valid, wantErr: true},
		{name: "wrong secret", body: body, signature: Sign("other", body), wantErr: true},
		{name: "missing", body: body, signature: "", wantErr: true},
		{name: "not hex", body: body, signature: "zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature("secret", tt.body, tt.signature)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignature)
				return
			}
			assert.NoError(t, err)
		})
	}
}
