package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhandelwal/rupeewise/internal/common"
	"github.com/nkhandelwal/rupeewise/internal/mlclass"
	"github.com/nkhandelwal/rupeewise/internal/model"
	"github.com/nkhandelwal/rupeewise/internal/orchestrator"
	"github.com/nkhandelwal/rupeewise/internal/p2p"
)

type stubRules struct {
	rules map[string]*model.MerchantRule
}

func (s stubRules) Lookup(_ context.Context, description string) (*model.MerchantRule, error) {
	desc := strings.ToLower(description)
	for fragment, rule := range s.rules {
		if strings.Contains(desc, fragment) {
			return rule, nil
		}
	}
	return nil, common.ErrNotFound
}

type stubML struct {
	byFragment map[string]mlclass.Prediction
}

func (s stubML) Predict(description string) mlclass.Prediction {
	desc := strings.ToLower(description)
	for fragment, pred := range s.byFragment {
		if strings.Contains(desc, fragment) {
			return pred
		}
	}
	return mlclass.Prediction{}
}

type stubLLM struct {
	reply       model.ClassificationResult
	err         error
	singleCalls int
	batchCalls  int
}

func (s *stubLLM) ClassifySingle(_ context.Context, txn model.Transaction) (model.ClassificationResult, error) {
	s.singleCalls++
	if s.err != nil {
		return model.ClassificationResult{}, s.err
	}
	res := s.reply
	res.TransactionID = txn.ID
	return res, nil
}

func (s *stubLLM) ClassifyBatch(_ context.Context, txns []model.Transaction) ([]model.ClassificationResult, orchestrator.FailureSummary, error) {
	s.batchCalls++
	if s.err != nil {
		return nil, orchestrator.FailureSummary{}, s.err
	}
	results := make([]model.ClassificationResult, len(txns))
	for i, txn := range txns {
		results[i] = s.reply
		results[i].TransactionID = txn.ID
	}
	return results, orchestrator.FailureSummary{TotalChunks: 1}, nil
}

func testTxn(description string, amount float64) model.Transaction {
	return model.Transaction{
		ID:          "txn-1",
		Date:        time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: description,
		Amount:      amount,
		Currency:    "INR",
	}
}

func newTestEngine(llmClient LLMClassifier, opts Options) (*Engine, *stubLLM) {
	rules := stubRules{rules: map[string]*model.MerchantRule{
		"zomato":  {Pattern: "zomato", MerchantName: "Zomato", Category: "Food & Dining", Subcategory: "Food Delivery", Confidence: 0.95},
		"netflix": {Pattern: "netflix", MerchantName: "Netflix", Category: "Entertainment", Subcategory: "Streaming", Confidence: 0.95},
	}}
	ml := stubML{byFragment: map[string]mlclass.Prediction{
		"big bazaar": {Category: "Groceries", Subcategory: "Supermarket", Confidence: 0.85},
		"mystery":    {Category: "Shopping", Subcategory: "", Confidence: 0.35},
	}}
	detector := p2p.NewDetector([]string{"zomato", "swiggy", "netflix", "big bazaar"})

	var stub *stubLLM
	if s, ok := llmClient.(*stubLLM); ok {
		stub = s
	}
	return New(rules, ml, detector, llmClient, opts, nil), stub
}

func TestClassifyRuleShortCircuitsWithoutLLM(t *testing.T) {
	llm := &stubLLM{reply: model.ClassificationResult{Category: "Shopping", Method: model.MethodLLM, Confidence: 0.9}}
	e, _ := newTestEngine(llm, Options{EnableLLMFallback: true})

	res, err := e.Classify(context.Background(), testTxn("ZOMATO ORDER #789456", 450))
	require.NoError(t, err)

	assert.Equal(t, "Food & Dining", res.Category)
	assert.Equal(t, "Food Delivery", res.Subcategory)
	assert.Equal(t, model.MethodRule, res.Method)
	assert.False(t, res.NeedsReview)
	assert.Zero(t, llm.singleCalls, "rule match must not call the provider")
}

func TestClassifyBankSMSMerchantVPA(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	res, err := e.Classify(context.Background(),
		testTxn("HDFC Bank: Rs.450.00 debited from a/c **1234 on 05-01-25 to VPA ZOMATO@ICICI Ref No 456789", 450))
	require.NoError(t, err)

	assert.Equal(t, "Food & Dining", res.Category)
	assert.False(t, res.IsP2P, "merchant VPA must not read as a transfer")
	assert.Equal(t, model.DirectionNone, res.P2PDirection)
}

func TestClassifyStatisticalAboveThreshold(t *testing.T) {
	llm := &stubLLM{}
	e, _ := newTestEngine(llm, Options{EnableLLMFallback: true})

	res, err := e.Classify(context.Background(), testTxn("BIG BAZAAR PURCHASE 4471", 2300))
	require.NoError(t, err)

	assert.Equal(t, "Groceries", res.Category)
	assert.Equal(t, model.MethodML, res.Method)
	assert.False(t, res.NeedsReview)
	assert.Zero(t, llm.singleCalls)
}

func TestClassifyLLMFallback(t *testing.T) {
	llm := &stubLLM{reply: model.ClassificationResult{Category: "Shopping", Subcategory: "Online Shopping", Method: model.MethodLLM, Confidence: 0.88}}
	e, _ := newTestEngine(llm, Options{EnableLLMFallback: true})

	res, err := e.Classify(context.Background(), testTxn("MYSTERY STORE 9913", 900))
	require.NoError(t, err)

	assert.Equal(t, "Shopping", res.Category)
	assert.Equal(t, model.MethodLLM, res.Method)
	assert.False(t, res.NeedsReview)
	assert.Equal(t, 1, llm.singleCalls)
}

func TestClassifyWithoutLLMNeverKeepsWeakGuess(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	// The statistical stage knows "mystery" at 0.35, well below threshold;
	// without an LLM the transaction must land in Uncategorized, not on the
	// weak guess.
	res, err := e.Classify(context.Background(), testTxn("MYSTERY STORE 9913", 900))
	require.NoError(t, err)

	assert.Equal(t, model.CategoryUncategorized, res.Category)
	assert.True(t, res.NeedsReview)
	assert.Zero(t, res.Confidence)
}

func TestClassifyLowConfidenceRuleFallsThrough(t *testing.T) {
	rules := stubRules{rules: map[string]*model.MerchantRule{
		"big bazaar": {Pattern: "big bazaar", Category: "Shopping", Confidence: 0.4},
	}}
	ml := stubML{byFragment: map[string]mlclass.Prediction{
		"big bazaar": {Category: "Food & Dining", Subcategory: "Groceries", Confidence: 0.85},
	}}
	e := New(rules, ml, p2p.NewDetector(nil), nil, Options{}, nil)

	res, err := e.Classify(context.Background(), testTxn("BIG BAZAAR PURCHASE 4471", 2300))
	require.NoError(t, err)

	assert.Equal(t, "Food & Dining", res.Category)
	assert.Equal(t, model.MethodML, res.Method, "a below-threshold rule must defer to the statistical stage")
	assert.False(t, res.NeedsReview)
}

func TestClassifyUnknownFallsToUncategorized(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	res, err := e.Classify(context.Background(), testTxn("XQZV 11", 10))
	require.NoError(t, err)

	assert.Equal(t, model.CategoryUncategorized, res.Category)
	assert.True(t, res.NeedsReview)
	assert.Zero(t, res.Confidence)
}

func TestClassifyAlwaysReviewLLM(t *testing.T) {
	llm := &stubLLM{reply: model.ClassificationResult{Category: "Shopping", Method: model.MethodLLM, Confidence: 0.95}}
	e, _ := newTestEngine(llm, Options{EnableLLMFallback: true, AlwaysReviewLLM: true})

	res, err := e.Classify(context.Background(), testTxn("MYSTERY STORE 9913", 900))
	require.NoError(t, err)
	assert.True(t, res.NeedsReview)
}

func TestClassifyP2PTransferOverride(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	res, err := e.Classify(context.Background(), testTxn("UPI/412345678901/Payment to mom/ramesh@okaxis", 2000))
	require.NoError(t, err)

	assert.True(t, res.IsP2P)
	assert.Equal(t, "Transfers & Payments", res.Category)
	assert.Equal(t, model.DirectionSent, res.P2PDirection)
	assert.True(t, res.HasTag(TagP2P))
	assert.True(t, res.HasTag(TagP2PSent))
	assert.GreaterOrEqual(t, res.P2PConfidence, 0.5)
}

func TestClassifyRuleBeatsP2POverride(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	// Rent keyword fires the detector but the Netflix rule owns the category.
	res, err := e.Classify(context.Background(), testTxn("NETFLIX payment rent month", 649))
	require.NoError(t, err)

	assert.Equal(t, "Entertainment", res.Category)
	assert.Equal(t, model.MethodRule, res.Method)
}

func TestClassifyTagsCreditAndLargeExpense(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	credit, err := e.Classify(context.Background(), testTxn("REFUND ZOMATO ORDER", -450))
	require.NoError(t, err)
	assert.True(t, credit.HasTag(TagCredit))

	large, err := e.Classify(context.Background(), testTxn("ZOMATO PARTY ORDER", 15000))
	require.NoError(t, err)
	assert.True(t, large.HasTag(TagLarge))
}

func TestClassifyTagsSubscription(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	res, err := e.Classify(context.Background(), testTxn("NETFLIX AUTOPAY RENEWAL", 649))
	require.NoError(t, err)
	assert.True(t, res.HasTag(TagSubscription))

	plain, err := e.Classify(context.Background(), testTxn("ZOMATO ORDER", 450))
	require.NoError(t, err)
	assert.False(t, plain.HasTag(TagSubscription))
}

func TestClassifySplitLineItems(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	txn := testTxn("MYSTERY STORE 9913", 1000)
	txn.LineItems = []model.LineItem{
		{Name: "netflix subscription", Amount: 649},
		{Name: "big bazaar snacks", Amount: 351},
	}

	res, err := e.Classify(context.Background(), txn)
	require.NoError(t, err)

	assert.True(t, res.IsSplit)
	assert.True(t, res.HasTag(TagSplit))
	require.Len(t, res.SplitItems, 2)
	assert.Equal(t, "Entertainment", res.SplitItems[0].Category)
	assert.Equal(t, "Groceries", res.SplitItems[1].Category)
	assert.InDelta(t, 0.649, res.SplitItems[0].Share, 0.001)
	assert.Equal(t, "Entertainment", res.Category, "parent follows the largest item")
}

func TestClassifySplitParentFollowsLargestItemOverRule(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	txn := testTxn("ZOMATO HYPERPURE 5521", 1000)
	txn.LineItems = []model.LineItem{
		{Name: "netflix subscription", Amount: 700},
		{Name: "big bazaar snacks", Amount: 300},
	}

	res, err := e.Classify(context.Background(), txn)
	require.NoError(t, err)

	require.True(t, res.IsSplit)
	assert.Equal(t, "Entertainment", res.Category,
		"largest item outranks the parent's own rule match")
}

func TestClassifyInvalidTransaction(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	_, err := e.Classify(context.Background(), model.Transaction{Description: "no id or date"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestClassifyIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})
	txn := testTxn("ZOMATO ORDER #789456", 450)

	first, err := e.Classify(context.Background(), txn)
	require.NoError(t, err)
	second, err := e.Classify(context.Background(), txn)
	require.NoError(t, err)

	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Method, second.Method)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.NeedsReview, second.NeedsReview)
}

func TestClassifyBatchMixesStrategies(t *testing.T) {
	llm := &stubLLM{reply: model.ClassificationResult{Category: "Shopping", Method: model.MethodLLM, Confidence: 0.9}}
	e, _ := newTestEngine(llm, Options{EnableLLMFallback: true})

	txns := []model.Transaction{
		testTxn("ZOMATO ORDER 1", 450),
		testTxn("TOTALLY UNKNOWN THING", 120),
		testTxn("BIG BAZAAR WEEKLY", 2100),
	}
	for i := range txns {
		txns[i].ID = string(rune('a' + i))
	}

	results, err := e.ClassifyBatch(context.Background(), txns)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, model.MethodRule, results[0].Method)
	assert.Equal(t, model.MethodLLM, results[1].Method)
	assert.Equal(t, model.MethodML, results[2].Method)
	assert.Equal(t, "a", results[0].TransactionID)
	assert.Equal(t, "b", results[1].TransactionID)
	assert.Equal(t, "c", results[2].TransactionID)
	assert.Equal(t, 1, llm.batchCalls, "one chunked call for all pending transactions")
	assert.Zero(t, llm.singleCalls)
}

func TestClassifyBatchSkipsInvalidRecord(t *testing.T) {
	e, _ := newTestEngine(nil, Options{})

	txns := []model.Transaction{
		testTxn("ZOMATO ORDER 1", 450),
		{Description: "no id or date"},
		testTxn("BIG BAZAAR WEEKLY", 2100),
	}
	txns[0].ID = "a"
	txns[2].ID = "c"

	results, err := e.ClassifyBatch(context.Background(), txns)
	require.NoError(t, err, "one invalid record must not abort the batch")
	require.Len(t, results, 3)

	assert.Equal(t, "Food & Dining", results[0].Category)
	assert.Equal(t, model.CategoryUncategorized, results[1].Category)
	assert.True(t, results[1].NeedsReview)
	assert.Equal(t, "Groceries", results[2].Category)
}

func TestClassifyBatchLLMFailureDegrades(t *testing.T) {
	llm := &stubLLM{err: common.ErrAllChunksFailed}
	e, _ := newTestEngine(llm, Options{EnableLLMFallback: true})

	results, err := e.ClassifyBatch(context.Background(), []model.Transaction{testTxn("TOTALLY UNKNOWN THING", 120)})
	require.NoError(t, err, "provider failure must not fail the batch")
	require.Len(t, results, 1)
	assert.Equal(t, model.CategoryUncategorized, results[0].Category)
	assert.True(t, results[0].NeedsReview)
}
