package seckill

import (
	"fmt"
	"strconv"
)

// OrderIntent 已通过准入的订单意向，从订单流中解析得到。
type OrderIntent struct {
	OrderID   uint64
	UserID    uint64
	VoucherID uint64
}

// Validate 最小字段校验，防止脏消息进入落单流程。
func (in OrderIntent) Validate() error {
	if in.OrderID == 0 {
		return fmt.Errorf("order id is required")
	}
	if in.UserID == 0 {
		return fmt.Errorf("user id is required")
	}
	if in.VoucherID == 0 {
		return fmt.Errorf("voucher id is required")
	}
	return nil
}

// ParseIntent 从流消息字段解析订单意向。
func ParseIntent(values map[string]interface{}) (OrderIntent, error) {
	orderStr, err := streamString(values, "id")
	if err != nil {
		return OrderIntent{}, err
	}
	userStr, err := streamString(values, "user_id")
	if err != nil {
		return OrderIntent{}, err
	}
	voucherStr, err := streamString(values, "voucher_id")
	if err != nil {
		return OrderIntent{}, err
	}

	orderID, err := strconv.ParseUint(orderStr, 10, 64)
	if err != nil {
		return OrderIntent{}, fmt.Errorf("invalid order id %q", orderStr)
	}
	userID, err := strconv.ParseUint(userStr, 10, 64)
	if err != nil {
		return OrderIntent{}, fmt.Errorf("invalid user_id %q", userStr)
	}
	voucherID, err := strconv.ParseUint(voucherStr, 10, 64)
	if err != nil {
		return OrderIntent{}, fmt.Errorf("invalid voucher_id %q", voucherStr)
	}

	in := OrderIntent{OrderID: orderID, UserID: userID, VoucherID: voucherID}
	if err := in.Validate(); err != nil {
		return OrderIntent{}, err
	}
	return in, nil
}

func streamString(values map[string]interface{}, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing field %s", key)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatInt(int64(x), 10), nil
	default:
		return "", fmt.Errorf("unsupported field type %s: %T", key, v)
	}
}
