package gncxml

import (
	"encoding/xml"
	"path"
)

// Element names in the GnuCash XML vocabulary, keyed as "prefix:local".
// The prefix is derived from the element's namespace, so documents with and
// without xmlns declarations resolve to the same keys.
const (
	tagBook           = "gnc:book"
	tagBookID         = "book:id"
	tagCountData      = "gnc:count-data"
	tagCommodity      = "gnc:commodity"
	tagCommoditySpace = "cmdty:space"
	tagCommodityID    = "cmdty:id"

	tagAccount             = "gnc:account"
	tagAccountName         = "act:name"
	tagAccountID           = "act:id"
	tagAccountType         = "act:type"
	tagAccountDescription  = "act:description"
	tagAccountCommodity    = "act:commodity"
	tagAccountCommoditySCU = "act:commodity-scu"
	tagAccountParent       = "act:parent"
	tagAccountSlots        = "act:slots"

	tagSlot      = "slot"
	tagSlotKey   = "slot:key"
	tagSlotValue = "slot:value"

	tagTransaction            = "gnc:transaction"
	tagTransactionID          = "trn:id"
	tagTransactionCurrency    = "trn:currency"
	tagDatePosted             = "trn:date-posted"
	tagDateEntered            = "trn:date-entered"
	tagTsDate                 = "ts:date"
	tagTransactionDescription = "trn:description"
	tagTransactionSlots       = "trn:slots"
	tagTransactionSplits      = "trn:splits"
	tagTransactionSplit       = "trn:split"

	// tagRecurrencePeriod is the retired raw-millisecond recurrence baked
	// directly into old export files.
	tagRecurrencePeriod = "trn:recurrence_period"

	tagSplitID              = "split:id"
	tagSplitMemo            = "split:memo"
	tagSplitReconciledState = "split:reconciled-state"
	tagSplitValue           = "split:value"
	tagSplitQuantity        = "split:quantity"
	tagSplitAccount         = "split:account"
	tagSplitSlots           = "split:slots"

	tagTemplateTransactions = "gnc:template-transactions"

	tagScheduledAction     = "gnc:schedxaction"
	tagSxID                = "sx:id"
	tagSxName              = "sx:name"
	tagSxEnabled           = "sx:enabled"
	tagSxAutoCreate        = "sx:autoCreate"
	tagSxAutoCreateNotify  = "sx:autoCreateNotify"
	tagSxAdvanceCreateDays = "sx:advanceCreateDays"
	tagSxAdvanceRemindDays = "sx:advanceRemindDays"
	tagSxInstanceCount     = "sx:instanceCount"
	tagSxStart             = "sx:start"
	tagSxLast              = "sx:last"
	tagSxEnd               = "sx:end"
	tagSxNumOccur          = "sx:num-occur"
	tagSxRemOccur          = "sx:rem-occur"
	tagSxTemplAccount      = "sx:templ-acct"
	tagSxSchedule          = "sx:schedule"

	tagRecurrence           = "gnc:recurrence"
	tagRecurrenceMult       = "recurrence:mult"
	tagRecurrencePeriodType = "recurrence:period_type"
	tagRecurrenceStart      = "recurrence:start"

	tagGDate = "gdate"
)

// Slot keys recognized by the importer. Anything else is ignored.
const (
	slotKeyPlaceholder            = "placeholder"
	slotKeyColor                  = "color"
	slotKeyFavorite               = "favorite"
	slotKeyHidden                 = "hidden"
	slotKeyNotes                  = "notes"
	slotKeyExported               = "exported"
	slotKeyDefaultTransferAccount = "default_transfer_account_uid"
	slotKeyFromScheduledAction    = "from_sched_action"
	slotKeySchedXAction           = "sched-xaction"
	slotKeySplitAccount           = "account"
	slotKeyCreditFormula          = "credit-formula"
	slotKeyDebitFormula           = "debit-formula"
)

// Timestamp layouts used by the format.
const (
	tsDateLayout = "2006-01-02 15:04:05 -0700"
	gDateLayout  = "2006-01-02"
)

// qname maps an element name to its "prefix:local" key. When namespaces are
// declared, Space is a URI whose last path segment is the prefix; when they
// are not, Space is the raw prefix already.
func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return path.Base(n.Space) + ":" + n.Local
}
