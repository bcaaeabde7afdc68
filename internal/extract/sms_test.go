package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/rupeewise/internal/common"
)

func TestParseHDFCSMSDebit(t *testing.T) {
	sms := "HDFC Bank: Rs.450.00 debited from A/c XX1234 on 15-Jan-24 to VPA ZOMATO@ICICI Ref No 456789"

	txn, err := ParseHDFCSMS(sms)
	require.NoError(t, err)
	assert.Equal(t, "ZOMATO", txn.Description)
	assert.Equal(t, 450.0, txn.Amount)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.Equal(t, "INR", txn.Currency)
	assert.Equal(t, sms, txn.SourceLine)
	assert.NotEmpty(t, txn.ID)
}

func TestParseHDFCSMSCreditIsNegative(t *testing.T) {
	sms := "HDFC Bank: Rs.2,000.00 credited to A/c XX1234 on 20-Jan-24 by UPI Ref 998877"

	txn, err := ParseHDFCSMS(sms)
	require.NoError(t, err)
	assert.Equal(t, -2000.0, txn.Amount)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), txn.Date)
}

func TestParseHDFCSMSNoAmount(t *testing.T) {
	_, err := ParseHDFCSMS("HDFC Bank: your statement is ready")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestParseHDFCSMSEmpty(t *testing.T) {
	_, err := ParseHDFCSMS("   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEmptyInput)
}

func TestParseSBISMSDebit(t *testing.T) {
	sms := "SBI: Your A/c XX5678 is debited by Rs.1,200.00 on 16/01/24 to BIGBASKET ORDER. Avl Bal Rs.34,500.00"

	txn, err := ParseSBISMS(sms)
	require.NoError(t, err)
	assert.Equal(t, "BIGBASKET ORDER", txn.Description)
	assert.Equal(t, 1200.0, txn.Amount)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), txn.Date)
}

func TestParseSBISMSCreditIsNegative(t *testing.T) {
	sms := "SBI: Rs.5,000.00 deposited in A/c XX5678 on 17/01/24 by NEFT"

	txn, err := ParseSBISMS(sms)
	require.NoError(t, err)
	assert.Equal(t, -5000.0, txn.Amount)
}

func TestParseSMSDispatch(t *testing.T) {
	hdfc := "HDFC Bank: Rs.450.00 debited from A/c XX1234 on 15-Jan-24 to VPA ZOMATO@ICICI"
	txn, err := ParseSMS("HDFC", hdfc)
	require.NoError(t, err)
	assert.Equal(t, "ZOMATO", txn.Description)

	sbi := "SBI: Your A/c XX5678 is debited by Rs.99.00 on 16/01/24 to JIOMART"
	txn, err = ParseSMS("sbi", sbi)
	require.NoError(t, err)
	assert.Equal(t, "JIOMART", txn.Description)

	_, err = ParseSMS("kotak", hdfc)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
