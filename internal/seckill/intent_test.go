package seckill

import "testing"

func TestParseIntent(t *testing.T) {
	cases := []struct {
		name    string
		values  map[string]interface{}
		want    OrderIntent
		wantErr bool
	}{
		{
			name:   "string fields",
			values: map[string]interface{}{"id": "42", "user_id": "7", "voucher_id": "3"},
			want:   OrderIntent{OrderID: 42, UserID: 7, VoucherID: 3},
		},
		{
			name:   "numeric fields",
			values: map[string]interface{}{"id": int64(42), "user_id": uint64(7), "voucher_id": float64(3)},
			want:   OrderIntent{OrderID: 42, UserID: 7, VoucherID: 3},
		},
		{
			name:    "missing user_id",
			values:  map[string]interface{}{"id": "42", "voucher_id": "3"},
			wantErr: true,
		},
		{
			name:    "non numeric order id",
			values:  map[string]interface{}{"id": "abc", "user_id": "7", "voucher_id": "3"},
			wantErr: true,
		},
		{
			name:    "zero order id",
			values:  map[string]interface{}{"id": "0", "user_id": "7", "voucher_id": "3"},
			wantErr: true,
		},
		{
			name:    "unsupported field type",
			values:  map[string]interface{}{"id": []int{1}, "user_id": "7", "voucher_id": "3"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseIntent(tc.values)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIntent: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestOrderIntentValidate(t *testing.T) {
	if err := (OrderIntent{OrderID: 1, UserID: 2, VoucherID: 3}).Validate(); err != nil {
		t.Errorf("valid intent rejected: %v", err)
	}
	if err := (OrderIntent{UserID: 2, VoucherID: 3}).Validate(); err == nil {
		t.Error("zero order id should be rejected")
	}
	if err := (OrderIntent{OrderID: 1, VoucherID: 3}).Validate(); err == nil {
		t.Error("zero user id should be rejected")
	}
	if err := (OrderIntent{OrderID: 1, UserID: 2}).Validate(); err == nil {
		t.Error("zero voucher id should be rejected")
	}
}
