package validate_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"omitempty,email"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Price    int64  `json:"price" validate:"gt=0"`
	Sale     int64  `json:"sale" validate:"ltefield=Price"`
	Sort     string `json:"sort" validate:"omitempty,oneof=asc desc"`
	NoTag    string `validate:"required"`
}

func valid() form {
	return form{Name: "Asha", Quantity: 1, Price: 100, Sale: 80, NoTag: "x"}
}

func TestStruct(t *testing.T) {
	v := validate.New()

	tests := []struct {
		name   string
		modify func(*form)
		want   map[string]string
	}{
		{
			name:   "valid",
			modify: func(*form) {},
		},
		{
			name:   "blank name",
			modify: func(f *form) { f.Name = "  \t" },
			want:   map[string]string{"name": "is required"},
		},
		{
			name:   "bad email",
			modify: func(f *form) { f.Email = "asha" },
			want:   map[string]string{"email": "must be a valid email"},
		},
		{
			name: "numbers",
			modify: func(f *form) {
				f.Quantity = 0
				f.Price = 0
			},
			want: map[string]string{"quantity": "must be >= 1", "price": "must be > 0"},
		},
		{
			name:   "sale above price",
			modify: func(f *form) { f.Sale = 120 },
			want:   map[string]string{"sale": "must be <= Price"},
		},
		{
			name:   "unknown sort",
			modify: func(f *form) { f.Sort = "random" },
			want:   map[string]string{"sort": "must be one of asc desc"},
		},
		{
			name:   "field without json tag",
			modify: func(f *form) { f.NoTag = "" },
			want:   map[string]string{"NoTag": "is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.modify(&f)

			err := v.Struct(f)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}

			var verr *validate.Error
			require.True(t, errors.As(err, &verr), "got %v", err)
			if diff := cmp.Diff(tt.want, verr.Fields); diff != "" {
				t.Errorf("Fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStruct_NotAStruct(t *testing.T) {
	err := validate.New().Struct("plain string")
	require.Error(t, err)

	var verr *validate.Error
	assert.False(t, errors.As(err, &verr))
}

func TestError(t *testing.T) {
	var verr validate.Error
	assert.True(t, verr.Empty())
	assert.NoError(t, verr.OrNil())

	verr.Add("zip", "is required")
	verr.Add("city", "is required")

	assert.False(t, verr.Empty())
	assert.Equal(t, "validation failed: city: is required; zip: is required", verr.Error())
	assert.Error(t, verr.OrNil())
}
