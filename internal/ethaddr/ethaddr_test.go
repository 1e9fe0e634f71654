package ethaddr

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	want := common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")

	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{name: "checksummed", input: "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc", wantOK: true},
		{name: "lowercase", input: "0xb4e16d0168e52d35cacd2c6185b44281ec28c9dc", wantOK: true},
		{name: "uppercase", input: "0xB4E16D0168E52D35CACD2C6185B44281EC28C9DC", wantOK: true},
		{name: "checksummed without prefix", input: "B4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc", wantOK: true},
		{name: "upper prefix", input: "0XB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc", wantOK: true},
		{name: "bad checksum", input: "0xb4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc", wantOK: false},
		{name: "bad checksum without prefix", input: "b4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc", wantOK: false},
		{name: "short", input: "0xB4e1", wantOK: false},
		{name: "not hex", input: "0xG4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr, ok := Parse(tt.input)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantOK, Valid(tt.input))
			if ok {
				require.Equal(t, want, addr)
			} else {
				require.Equal(t, common.Address{}, addr)
			}
		})
	}
}
