package p2p

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

func newTestDetector() *Detector {
	return NewDetector([]string{"zomato", "swiggy", "amazon", "paytm wallet"})
}

func TestDetectMerchantVPAIsNotP2P(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("HDFC Bank: Rs.450.00 debited from a/c **1234 on 05-01-25 to VPA ZOMATO@ICICI Ref No 456789", 450)

	assert.False(t, res.IsP2P)
	assert.Equal(t, model.DirectionNone, res.Direction)
	assert.Contains(t, res.Reason, "zomato")
}

func TestDetectFamilyUPISent(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("UPI/412345678901/Payment to mom/ramesh@okaxis", 2000)

	assert.True(t, res.IsP2P)
	assert.GreaterOrEqual(t, res.Confidence, 0.88)
	assert.Equal(t, model.DirectionSent, res.Direction)
	assert.Equal(t, "upi", res.TransferMode)
	assert.Equal(t, "personal", res.Relationship)
	assert.Equal(t, "family", res.RelationshipDetail)
	assert.Equal(t, "ramesh@okaxis", res.CounterpartyVPA)
	assert.Equal(t, "UPI Sent - Friends & Family", res.Subcategory)
}

func TestDetectSalaryCredit(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("NEFT/000123456/ACME CORP SALARY JAN", -85000)

	assert.True(t, res.IsP2P)
	assert.InDelta(t, 0.93, res.Confidence, 0.001)
	assert.Equal(t, model.DirectionReceived, res.Direction)
	assert.Equal(t, "income", res.Relationship)
	assert.Equal(t, "employer", res.RelationshipDetail)
	assert.Contains(t, res.Subcategory, "Salary")
}

func TestDetectIncomeForcesReceived(t *testing.T) {
	d := newTestDetector()

	// Sign says debit but salary keyword wins the direction.
	res := d.Detect("SALARY CREDIT ACME CORP", 100)

	assert.Equal(t, model.DirectionReceived, res.Direction)
}

func TestDetectRentObligation(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("UPI/998811223344/house rent/sharma.landlord@ybl", 18000)

	assert.True(t, res.IsP2P)
	assert.Equal(t, "obligation", res.Relationship)
	assert.Equal(t, "landlord", res.RelationshipDetail)
	assert.Equal(t, "UPI Sent - Rent", res.Subcategory)
}

func TestDetectNEFTPersonName(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("NEFT/000123456/RAHUL VERMA/transfer", 5000)

	assert.True(t, res.IsP2P)
	assert.GreaterOrEqual(t, res.Confidence, 0.8)
	assert.Equal(t, "Rahul Verma", res.Counterparty)
	assert.Equal(t, "neft", res.TransferMode)
}

func TestDetectBusinessHandleStaysBelowThreshold(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("payment via merchantpayments@razorpay", 1299)

	assert.False(t, res.IsP2P)
}

func TestDetectBareTransferReference(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("IMPS/509912345678", 3000)

	assert.False(t, res.IsP2P, "0.45 sits under the threshold")
	assert.Contains(t, res.Reason, "bare transfer reference")
}

func TestDetectPhoneNumberTransfer(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("UPI transfer to 9876543210 friend dinner split", 460)

	assert.True(t, res.IsP2P)
	assert.Equal(t, "9876543210", res.CounterpartyPhone)
	assert.Equal(t, "friend", res.RelationshipDetail)
}

func TestDetectGiftReceived(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("UPI/123456/diwali gift from dadi/kamla.devi@oksbi", -5100)

	assert.True(t, res.IsP2P)
	assert.Equal(t, model.DirectionReceived, res.Direction)
	assert.Equal(t, "gift", res.Relationship)
	assert.Equal(t, "family", res.RelationshipDetail)
	assert.Equal(t, "UPI Received - Gift", res.Subcategory)
}

func TestDetectPlainPurchaseNotP2P(t *testing.T) {
	d := newTestDetector()

	res := d.Detect("POS 512345 BIG BAZAAR STORE MUMBAI", 2340)

	assert.False(t, res.IsP2P)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestVPAToName(t *testing.T) {
	assert.Equal(t, "Rahul Sharma", vpaToName("rahul.sharma"))
	assert.Equal(t, "Priya Verma", vpaToName("priyaVerma"))
}

func TestLooksLikePersonName(t *testing.T) {
	assert.True(t, looksLikePersonName("Rahul Verma"))
	assert.False(t, looksLikePersonName("Acme Solutions Pvt Ltd Towers"))
	assert.False(t, looksLikePersonName("AB12CD34"))
	assert.False(t, looksLikePersonName("xy"))
}
