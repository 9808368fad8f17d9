package mathutil

import "github.com/holiman/uint256"

// PctBase is the base of fee percentages, 10^18 stands for 100%.
const PctBase uint64 = 1_000_000_000_000_000_000

// Fee returns floor(amount * pct / PctBase). The product is computed on 512
// bits so that it never overflows; the result is truncated toward zero.
func Fee(amount, pct *uint256.Int) (*uint256.Int, error) {
	fee, overflow := new(uint256.Int).MulDivOverflow(
		amount, pct, uint256.NewInt(PctBase),
	)
	if overflow {
		return nil, ErrOverflow
	}
	return fee, nil
}

// LessFee returns the given amount with the fee subtracted along with the
// calculated fee.
func LessFee(amount, pct *uint256.Int) (withoutFee, fee *uint256.Int, err error) {
	fee, err = Fee(amount, pct)
	if err != nil {
		return nil, nil, err
	}
	withoutFee, err = Sub(amount, fee)
	if err != nil {
		return nil, nil, err
	}
	return withoutFee, fee, nil
}
