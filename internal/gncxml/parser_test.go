package gncxml_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncbooks/gncledger/internal/core/domain"
	"github.com/gncbooks/gncledger/internal/gncxml"
	"github.com/gncbooks/gncledger/internal/platform/commodities"
)

const sampleDocument = `<?xml version="1.0" encoding="utf-8"?>
<gnc-v2>
<gnc:book version="2.0.0">
<book:id type="guid">book-0001</book:id>
<gnc:count-data cd:type="account">4</gnc:count-data>
<gnc:account version="2.0.0">
  <act:name>Root Account</act:name>
  <act:id type="guid">acc-root</act:id>
  <act:type>ROOT</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </act:commodity>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Assets</act:name>
  <act:id type="guid">acc-assets</act:id>
  <act:type>ASSET</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-root</act:parent>
  <act:slots>
    <slot>
      <slot:key>placeholder</slot:key>
      <slot:value type="string">true</slot:value>
    </slot>
  </act:slots>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Checking</act:name>
  <act:id type="guid">acc-checking</act:id>
  <act:type>BANK</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-assets</act:parent>
  <act:slots>
    <slot>
      <slot:key>color</slot:key>
      <slot:value type="string">#ff0099</slot:value>
    </slot>
    <slot>
      <slot:key>favorite</slot:key>
      <slot:value type="string">true</slot:value>
    </slot>
  </act:slots>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Shares</act:name>
  <act:id type="guid">acc-shares</act:id>
  <act:type>STOCK</act:type>
  <act:commodity>
    <cmdty:space>NYSE</cmdty:space>
    <cmdty:id>ACME</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-assets</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Groceries</act:name>
  <act:id type="guid">acc-groceries</act:id>
  <act:type>EXPENSE</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-root</act:parent>
</gnc:account>
<gnc:transaction version="2.0.0">
  <trn:id type="guid">txn-0001</trn:id>
  <trn:currency>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </trn:currency>
  <trn:date-posted>
    <ts:date>2024-03-15 10:30:00 +0000</ts:date>
  </trn:date-posted>
  <trn:date-entered>
    <ts:date>2024-03-16 08:00:00 +0000</ts:date>
  </trn:date-entered>
  <trn:description>Weekly shopping</trn:description>
  <trn:slots>
    <slot>
      <slot:key>notes</slot:key>
      <slot:value type="string">paid cash</slot:value>
    </slot>
    <slot>
      <slot:key>exported</slot:key>
      <slot:value type="string">true</slot:value>
    </slot>
  </trn:slots>
  <trn:splits>
    <trn:split>
      <split:id type="guid">split-0001</split:id>
      <split:memo>veggies</split:memo>
      <split:reconciled-state>c</split:reconciled-state>
      <split:value>1050/100</split:value>
      <split:quantity>1050/100</split:quantity>
      <split:account type="guid">acc-groceries</split:account>
    </trn:split>
    <trn:split>
      <split:id type="guid">split-0002</split:id>
      <split:reconciled-state>n</split:reconciled-state>
      <split:value>-1050/100</split:value>
      <split:quantity>-1050/100</split:quantity>
      <split:account type="guid">acc-checking</split:account>
    </trn:split>
  </trn:splits>
</gnc:transaction>
<gnc:template-transactions>
  <gnc:account version="2.0.0">
    <act:name>Template Host</act:name>
    <act:id type="guid">acc-template</act:id>
    <act:type>BANK</act:type>
  </gnc:account>
  <gnc:transaction version="2.0.0">
    <trn:id type="guid">txn-template</trn:id>
    <trn:currency>
      <cmdty:space>ISO4217</cmdty:space>
      <cmdty:id>USD</cmdty:id>
    </trn:currency>
    <trn:date-posted>
      <ts:date>2024-01-01 00:00:00 +0000</ts:date>
    </trn:date-posted>
    <trn:description>Monthly rent</trn:description>
    <trn:splits>
      <trn:split>
        <split:id type="guid">split-tmpl-1</split:id>
        <split:reconciled-state>n</split:reconciled-state>
        <split:value>0/100</split:value>
        <split:account type="guid">acc-template</split:account>
        <split:slots>
          <slot>
            <slot:key>sched-xaction</slot:key>
            <slot:value type="frame">
              <slot>
                <slot:key>account</slot:key>
                <slot:value type="guid">acc-checking</slot:value>
              </slot>
              <slot>
                <slot:key>credit-formula</slot:key>
                <slot:value type="string">1.250,00</slot:value>
              </slot>
            </slot:value>
          </slot>
        </split:slots>
      </trn:split>
    </trn:splits>
  </gnc:transaction>
</gnc:template-transactions>
<gnc:schedxaction version="2.0.0">
  <sx:id type="guid">sx-0001</sx:id>
  <sx:name>Rent</sx:name>
  <sx:enabled>y</sx:enabled>
  <sx:autoCreate>y</sx:autoCreate>
  <sx:autoCreateNotify>n</sx:autoCreateNotify>
  <sx:advanceCreateDays>3</sx:advanceCreateDays>
  <sx:advanceRemindDays>1</sx:advanceRemindDays>
  <sx:instanceCount>5</sx:instanceCount>
  <sx:start>
    <gdate>2024-01-01</gdate>
  </sx:start>
  <sx:last>
    <gdate>2024-05-01</gdate>
  </sx:last>
  <sx:templ-acct type="guid">acc-template</sx:templ-acct>
  <sx:schedule>
    <gnc:recurrence version="1.0.0">
      <recurrence:mult>1</recurrence:mult>
      <recurrence:period_type>month</recurrence:period_type>
      <recurrence:start>
        <gdate>2024-01-01</gdate>
      </recurrence:start>
    </gnc:recurrence>
  </sx:schedule>
</gnc:schedxaction>
</gnc:book>
</gnc-v2>
`

func newTestParser(t *testing.T) *gncxml.Parser {
	t.Helper()
	return gncxml.NewParser(
		gncxml.WithCommodityLookup(commodities.Default().ByCurrencyCode),
	)
}

func TestParser_SampleDocument(t *testing.T) {
	result, err := newTestParser(t).Parse(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "book-0001", result.Book.UID)
	assert.Equal(t, "acc-root", result.Book.RootAccountUID)

	// The template host account never reaches the account list.
	require.Len(t, result.Accounts, 5)
	byUID := make(map[string]*domain.Account)
	for _, a := range result.Accounts {
		byUID[a.UID] = a
	}
	assert.NotContains(t, byUID, "acc-template")

	root := byUID["acc-root"]
	assert.True(t, root.IsRoot())
	assert.True(t, root.Hidden)
	assert.Equal(t, " Root Account", root.FullName)

	assets := byUID["acc-assets"]
	assert.True(t, assets.Placeholder)
	assert.Equal(t, "Assets", assets.FullName)

	checking := byUID["acc-checking"]
	assert.Equal(t, "Assets:Checking", checking.FullName)
	assert.Equal(t, "#ff0099", checking.Color)
	assert.True(t, checking.Favorite)
	assert.Equal(t, "USD", checking.Commodity.Mnemonic)
	assert.Equal(t, int64(100), checking.Commodity.SmallestFraction)

	// A non-ISO4217 commodity maps to the XXX sentinel.
	shares := byUID["acc-shares"]
	assert.Equal(t, domain.NoCurrencyCode, shares.Commodity.Mnemonic)
	assert.Equal(t, int64(1000000), shares.Commodity.SmallestFraction)

	require.Len(t, result.Transactions, 2)
	txn := result.Transactions[0]
	assert.Equal(t, "txn-0001", txn.UID)
	assert.Equal(t, "Weekly shopping", txn.Description)
	assert.Equal(t, "paid cash", txn.Notes)
	assert.True(t, txn.IsExported)
	assert.False(t, txn.IsTemplate)
	assert.Equal(t, "USD", txn.CurrencyCode)
	assert.Equal(t, 2024, txn.Timestamp.Year())
	assert.Equal(t, 15, txn.Timestamp.Day())
	assert.Equal(t, 16, txn.CreatedAt.Day())
	assert.True(t, txn.SplitsBalance())

	require.Len(t, txn.Splits, 2)
	debit := txn.Splits[0]
	assert.Equal(t, "acc-groceries", debit.AccountUID)
	assert.Equal(t, domain.Debit, debit.SplitType)
	assert.Equal(t, "10.50", debit.Amount.ToPlainString())
	assert.Equal(t, "veggies", debit.Memo)
	assert.Equal(t, domain.ReconcileCleared, debit.ReconcileState)

	credit := txn.Splits[1]
	assert.Equal(t, "acc-checking", credit.AccountUID)
	assert.Equal(t, domain.Credit, credit.SplitType)
	assert.Equal(t, "10.50", credit.Amount.ToPlainString())

	// The template transaction is kept, flagged, with its formula resolved
	// against the real target account.
	tmpl := result.Transactions[1]
	assert.Equal(t, "txn-template", tmpl.UID)
	assert.True(t, tmpl.IsTemplate)
	require.Len(t, tmpl.Splits, 1)
	formulaSplit := tmpl.Splits[0]
	assert.Equal(t, "acc-checking", formulaSplit.AccountUID)
	assert.Equal(t, domain.Credit, formulaSplit.SplitType)
	assert.Equal(t, "1250.00", formulaSplit.Amount.ToPlainString())

	require.Len(t, result.ScheduledActions, 1)
	sa := result.ScheduledActions[0]
	assert.Equal(t, "sx-0001", sa.UID)
	assert.Equal(t, domain.ActionTransaction, sa.ActionType)
	assert.True(t, sa.Enabled)
	assert.True(t, sa.AutoCreate)
	assert.False(t, sa.AutoNotify)
	assert.Equal(t, 3, sa.AdvanceCreateDays)
	assert.Equal(t, 1, sa.AdvanceNotifyDays)
	assert.Equal(t, 5, sa.ExecutionCount)
	assert.Equal(t, "txn-template", sa.ActionUID, "templ-acct should resolve to the template transaction")
	require.NotNil(t, sa.Recurrence)
	assert.Equal(t, domain.PeriodMonth, sa.Recurrence.PeriodType)
	assert.Equal(t, 1, sa.Recurrence.Multiplier)
	assert.Equal(t, 2024, sa.Recurrence.PeriodStart.Year())
	assert.Equal(t, time.January, sa.StartTime.Month())
	assert.Equal(t, time.May, sa.LastRunTime.Month())
}

func TestParser_LegacyRecurrenceSynthesizesAction(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gnc-v2>
<gnc:book>
<book:id type="guid">book-legacy</book:id>
<gnc:transaction>
  <trn:id type="guid">txn-legacy</trn:id>
  <trn:currency>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>EUR</cmdty:id>
  </trn:currency>
  <trn:date-posted>
    <ts:date>2015-06-01 00:00:00 +0000</ts:date>
  </trn:date-posted>
  <trn:recurrence_period>2592000000</trn:recurrence_period>
  <trn:splits>
    <trn:split>
      <split:id type="guid">split-legacy</split:id>
      <split:value>100/100</split:value>
      <split:account type="guid">acc-x</split:account>
    </trn:split>
  </trn:splits>
</gnc:transaction>
</gnc:book>
</gnc-v2>`

	result, err := newTestParser(t).Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	txn := result.Transactions[0]
	assert.True(t, txn.IsTemplate, "a legacy recurring transaction becomes a template")

	require.Len(t, result.ScheduledActions, 1)
	sa := result.ScheduledActions[0]
	assert.NotEmpty(t, sa.UID)
	assert.Equal(t, "txn-legacy", sa.ActionUID)
	assert.True(t, sa.Enabled)
	require.NotNil(t, sa.Recurrence)
	assert.Equal(t, domain.PeriodMonth, sa.Recurrence.PeriodType)
	assert.Equal(t, 1, sa.Recurrence.Multiplier)
	assert.Equal(t, txn.Timestamp, sa.Recurrence.PeriodStart)
}

func TestParser_BadDateIsFatal(t *testing.T) {
	doc := `<gnc-v2><gnc:book>
<gnc:transaction>
  <trn:id type="guid">txn-bad</trn:id>
  <trn:date-posted><ts:date>not a date</ts:date></trn:date-posted>
</gnc:transaction>
</gnc:book></gnc-v2>`

	_, err := newTestParser(t).Parse(strings.NewReader(doc))
	require.Error(t, err)
	var parseErr *gncxml.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "ts:date", parseErr.Element)
}

func TestParser_UnknownPeriodTypeIsFatal(t *testing.T) {
	doc := `<gnc-v2><gnc:book>
<gnc:schedxaction>
  <sx:id type="guid">sx-bad</sx:id>
  <sx:schedule>
    <gnc:recurrence>
      <recurrence:mult>1</recurrence:mult>
      <recurrence:period_type>fortnight</recurrence:period_type>
    </gnc:recurrence>
  </sx:schedule>
</gnc:schedxaction>
</gnc:book></gnc-v2>`

	_, err := newTestParser(t).Parse(strings.NewReader(doc))
	var parseErr *gncxml.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParser_BadFormulaIsNotFatal(t *testing.T) {
	doc := `<gnc-v2><gnc:book>
<gnc:template-transactions>
<gnc:transaction>
  <trn:id type="guid">txn-t</trn:id>
  <trn:currency>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>USD</cmdty:id>
  </trn:currency>
  <trn:splits>
    <trn:split>
      <split:id type="guid">split-t</split:id>
      <split:value>500/100</split:value>
      <split:account type="guid">acc-t</split:account>
      <split:slots>
        <slot>
          <slot:key>sched-xaction</slot:key>
          <slot:value type="frame">
            <slot>
              <slot:key>debit-formula</slot:key>
              <slot:value type="string">not a number</slot:value>
            </slot>
          </slot:value>
        </slot>
      </split:slots>
    </trn:split>
  </trn:splits>
</gnc:transaction>
</gnc:template-transactions>
</gnc:book></gnc-v2>`

	result, err := newTestParser(t).Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Transactions[0].Splits, 1)
	// The split keeps the amount parsed from split:value.
	assert.Equal(t, "5.00", result.Transactions[0].Splits[0].Amount.ToPlainString())
}

func TestParser_InvalidColorIsNotFatal(t *testing.T) {
	doc := `<gnc-v2><gnc:book>
<gnc:account>
  <act:name>Tinted</act:name>
  <act:id type="guid">acc-tinted</act:id>
  <act:type>BANK</act:type>
  <act:slots>
    <slot>
      <slot:key>color</slot:key>
      <slot:value type="string">Not A Color(0,0,0)</slot:value>
    </slot>
  </act:slots>
</gnc:account>
</gnc:book></gnc-v2>`

	result, err := newTestParser(t).Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, result.Accounts, 1)
	assert.Empty(t, result.Accounts[0].Color)
}

func TestParser_MalformedXMLIsFatal(t *testing.T) {
	_, err := newTestParser(t).Parse(strings.NewReader("<gnc-v2><unclosed"))
	var parseErr *gncxml.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParser_GeneratesBookUIDWhenMissing(t *testing.T) {
	result, err := newTestParser(t).Parse(strings.NewReader("<gnc-v2><gnc:book></gnc:book></gnc-v2>"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Book.UID)
}

// Real exports declare the vocabulary as XML namespaces instead of using
// bare prefixes; both spellings must resolve to the same elements.
const namespacedDocument = `<?xml version="1.0" encoding="utf-8"?>
<gnc-v2
  xmlns:gnc="http://www.gnucash.org/XML/gnc"
  xmlns:book="http://www.gnucash.org/XML/book"
  xmlns:act="http://www.gnucash.org/XML/act"
  xmlns:cmdty="http://www.gnucash.org/XML/cmdty"
  xmlns:trn="http://www.gnucash.org/XML/trn"
  xmlns:ts="http://www.gnucash.org/XML/ts"
  xmlns:split="http://www.gnucash.org/XML/split">
<gnc:book version="2.0.0">
<book:id type="guid">book-ns</book:id>
<gnc:account version="2.0.0">
  <act:name>Root</act:name>
  <act:id type="guid">acc-root</act:id>
  <act:type>ROOT</act:type>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Wallet</act:name>
  <act:id type="guid">acc-wallet</act:id>
  <act:type>CASH</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>EUR</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-root</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Snacks</act:name>
  <act:id type="guid">acc-snacks</act:id>
  <act:type>EXPENSE</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>EUR</cmdty:id>
  </act:commodity>
  <act:parent type="guid">acc-wallet</act:parent>
</gnc:account>
<gnc:transaction version="2.0.0">
  <trn:id type="guid">txn-ns</trn:id>
  <trn:currency>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>EUR</cmdty:id>
  </trn:currency>
  <trn:date-posted><ts:date>2024-04-05 10:30:00 +0000</ts:date></trn:date-posted>
  <trn:date-entered><ts:date>2024-04-05 10:30:00 +0000</ts:date></trn:date-entered>
  <trn:description>Vending machine</trn:description>
  <trn:splits>
    <trn:split>
      <split:id type="guid">sp-ns-1</split:id>
      <split:value>250/100</split:value>
      <split:account type="guid">acc-snacks</split:account>
    </trn:split>
    <trn:split>
      <split:id type="guid">sp-ns-2</split:id>
      <split:value>-250/100</split:value>
      <split:account type="guid">acc-wallet</split:account>
    </trn:split>
  </trn:splits>
</gnc:transaction>
</gnc:book>
</gnc-v2>`

func TestParser_DeclaredNamespaces(t *testing.T) {
	result, err := newTestParser(t).Parse(strings.NewReader(namespacedDocument))
	require.NoError(t, err)

	assert.Equal(t, "book-ns", result.Book.UID)
	assert.Equal(t, "acc-root", result.Book.RootAccountUID)

	require.Len(t, result.Accounts, 3)
	byUID := make(map[string]*domain.Account)
	for _, a := range result.Accounts {
		byUID[a.UID] = a
	}
	assert.Equal(t, "Wallet", byUID["acc-wallet"].FullName)
	assert.Equal(t, "Wallet:Snacks", byUID["acc-snacks"].FullName)
	assert.Equal(t, "EUR", byUID["acc-wallet"].Commodity.Mnemonic)

	require.Len(t, result.Transactions, 1)
	txn := result.Transactions[0]
	assert.Equal(t, "Vending machine", txn.Description)
	assert.True(t, txn.SplitsBalance())
	require.Len(t, txn.Splits, 2)
	assert.Equal(t, "2.50", txn.Splits[0].Amount.ToPlainString())
	assert.Equal(t, domain.Debit, txn.Splits[0].SplitType)
	assert.Equal(t, domain.Credit, txn.Splits[1].SplitType)
}
