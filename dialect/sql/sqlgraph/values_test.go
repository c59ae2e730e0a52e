package sqlgraph

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddals/schema/field"
)

func TestToDB(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))
	status := field.Enum("status").Values("draft", "in review").Descriptor()
	tests := []struct {
		name    string
		fs      *FieldSpec
		in      any
		want    any
		wantErr bool
	}{
		{name: "nil", fs: &FieldSpec{Type: field.TypeString}, in: nil, want: nil},
		{name: "int", fs: &FieldSpec{Type: field.TypeInt}, in: "42", want: int64(42)},
		{name: "decimal", fs: &FieldSpec{Type: field.TypeDecimal}, in: "10.250", want: "10.25"},
		{name: "duration", fs: &FieldSpec{Type: field.TypeDuration}, in: time.Minute, want: int64(time.Minute)},
		{name: "uuid", fs: &FieldSpec{Type: field.TypeUUID}, in: id, want: id.String()},
		{name: "date", fs: &FieldSpec{Type: field.TypeDate}, in: "2024-03-01", want: "2024-03-01"},
		{name: "time", fs: &FieldSpec{Type: field.TypeTime}, in: at, want: at.UTC()},
		{name: "time of day", fs: &FieldSpec{Type: field.TypeTimeOfDay}, in: "09:15", want: "09:15:00"},
		{name: "json", fs: &FieldSpec{Type: field.TypeJSON}, in: map[string]any{"a": 1}, want: `{"a":1}`},
		{name: "enum wire name", fs: &FieldSpec{Type: field.TypeEnum, Desc: status}, in: "IN_REVIEW", want: "in review"},
		{name: "enum invalid", fs: &FieldSpec{Type: field.TypeEnum, Desc: status}, in: "closed", wantErr: true},
		{name: "int invalid", fs: &FieldSpec{Type: field.TypeInt}, in: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDB(tt.fs, tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromDB(t *testing.T) {
	got, err := FromDB(&FieldSpec{Type: field.TypeDecimal}, []byte("3.14"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.14").Equal(got.(decimal.Decimal)))

	got, err = FromDB(&FieldSpec{Type: field.TypeBool}, int64(1))
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = FromDB(&FieldSpec{Type: field.TypeJSON}, `{"k":"v"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, got)

	got, err = FromDB(&FieldSpec{Type: field.TypeString}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
