package gncxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gncbooks/gncledger/internal/core/domain"
)

// CommodityLookup resolves an ISO-4217 currency code to its commodity
// definition. The bool result reports whether the code is known.
type CommodityLookup func(code string) (domain.Commodity, bool)

// Result holds everything reconstructed from one document, ready for the
// bulk commit: accounts first, then transactions, then scheduled actions.
type Result struct {
	Book             domain.Book
	Accounts         []*domain.Account
	Transactions     []*domain.Transaction
	ScheduledActions []*domain.ScheduledAction
}

// Option configures a Parser.
type Option func(*Parser)

// WithCommodityLookup sets the currency table consulted for smallest
// fractions of imported currency codes.
func WithCommodityLookup(lookup CommodityLookup) Option {
	return func(p *Parser) { p.lookup = lookup }
}

// WithFormulaFormat overrides the locale format used for template split
// formulas.
func WithFormulaFormat(format FormulaFormat) Option {
	return func(p *Parser) { p.formulaFormat = format }
}

// WithLogger sets the logger used for non-fatal degradations.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// commodityTarget says which object a cmdty:space/cmdty:id pair belongs to.
type commodityTarget int

const (
	commodityTargetNone commodityTarget = iota
	commodityTargetAccount
	commodityTargetTransaction
)

// dateField says which transaction date a ts:date element fills.
type dateField int

const (
	dateFieldNone dateField = iota
	dateFieldPosted
	dateFieldEntered
)

// gdateField says which scheduled-action date a gdate element fills.
type gdateField int

const (
	gdateFieldNone gdateField = iota
	gdateFieldSxStart
	gdateFieldSxLast
	gdateFieldSxEnd
	gdateFieldRecurrenceStart
)

// slotScope says which object's slots are being read.
type slotScope int

const (
	slotScopeNone slotScope = iota
	slotScopeAccount
	slotScopeTransaction
	slotScopeSplit
)

// parserState is the explicit "current context" of the forward-only parse.
// Keeping it in one struct makes illegal combinations easy to spot and
// trivial to reset between objects.
type parserState struct {
	inTemplates bool

	commoditySpace  string
	commodityTarget commodityTarget
	dateField       dateField
	gdateField      gdateField
	slotScope       slotScope

	// pendingSlotKey is the most recently closed slot:key; the following
	// slot:value is routed by it.
	pendingSlotKey string
	// frameKeys tracks the keys of enclosing frame-typed slot values,
	// e.g. the sched-xaction frame around template formulas.
	frameKeys []string
	// valueIsFrame mirrors the open slot:value elements.
	valueIsFrame []bool

	legacyPeriodMillis int64
}

func (s *parserState) inSchedXActionFrame() bool {
	for _, k := range s.frameKeys {
		if k == slotKeySchedXAction {
			return true
		}
	}
	return false
}

// legacySchedule is a transaction-level raw-millisecond recurrence collected
// during the parse and turned into a ScheduledAction in the post-pass.
type legacySchedule struct {
	transactionUID string
	periodMillis   int64
	start          time.Time
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Parser reconstructs a ledger from a single forward pass over a GnuCash
// XML document. A Parser is single-use: create one per document.
type Parser struct {
	logger        *slog.Logger
	lookup        CommodityLookup
	formulaFormat FormulaFormat

	decoder *xml.Decoder
	content strings.Builder
	state   parserState

	book             domain.Book
	accounts         []*domain.Account
	transactions     []*domain.Transaction
	scheduledActions []*domain.ScheduledAction

	currentAccount         *domain.Account
	currentTransaction     *domain.Transaction
	currentSplit           *domain.Split
	currentScheduledAction *domain.ScheduledAction
	currentRecurrence      *domain.Recurrence

	// templateAccountTxn maps a template account UID to the template
	// transaction whose splits reference it; sx:templ-acct is resolved
	// through it in the post-pass.
	templateAccountTxn map[string]string
	legacySchedules    []legacySchedule
}

// NewParser creates a parser with the default legacy formula format and a
// currency lookup that knows nothing (every currency falls back to a
// fraction of 100).
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:        slog.Default(),
		formulaFormat: LegacyFormulaFormat,
		lookup: func(code string) (domain.Commodity, bool) {
			return domain.Commodity{}, false
		},
		templateAccountTxn: make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse consumes the document and returns the reconstructed ledger. Any
// structural failure aborts with a *ParseError and no partial result.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	p.decoder = xml.NewDecoder(r)
	for {
		tok, err := p.decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Offset: p.decoder.InputOffset(), Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.content.Reset()
			p.startElement(qname(t.Name), t.Attr)
		case xml.CharData:
			p.content.Write(t)
		case xml.EndElement:
			if err := p.endElement(qname(t.Name)); err != nil {
				return nil, err
			}
		}
	}
	return p.finish()
}

func attrValue(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (p *Parser) startElement(name string, attrs []xml.Attr) {
	switch name {
	case tagAccount:
		p.currentAccount = &domain.Account{Commodity: domain.NoCurrency()}
	case tagAccountCommodity:
		p.state.commodityTarget = commodityTargetAccount
	case tagTransaction:
		p.currentTransaction = &domain.Transaction{
			Commodity:  domain.NoCurrency(),
			IsTemplate: p.state.inTemplates,
		}
	case tagTransactionCurrency:
		p.state.commodityTarget = commodityTargetTransaction
	case tagDatePosted:
		p.state.dateField = dateFieldPosted
	case tagDateEntered:
		p.state.dateField = dateFieldEntered
	case tagTransactionSplit:
		p.currentSplit = &domain.Split{ReconcileState: domain.ReconcileNotReconciled}
	case tagAccountSlots:
		p.state.slotScope = slotScopeAccount
	case tagTransactionSlots:
		p.state.slotScope = slotScopeTransaction
	case tagSplitSlots:
		p.state.slotScope = slotScopeSplit
	case tagSlotValue:
		isFrame := attrValue(attrs, "type") == "frame"
		p.state.valueIsFrame = append(p.state.valueIsFrame, isFrame)
		if isFrame {
			p.state.frameKeys = append(p.state.frameKeys, p.state.pendingSlotKey)
		}
	case tagTemplateTransactions:
		p.state.inTemplates = true
	case tagScheduledAction:
		p.currentScheduledAction = &domain.ScheduledAction{ActionType: domain.ActionTransaction}
	case tagSxStart:
		p.state.gdateField = gdateFieldSxStart
	case tagSxLast:
		p.state.gdateField = gdateFieldSxLast
	case tagSxEnd:
		p.state.gdateField = gdateFieldSxEnd
	case tagRecurrenceStart:
		p.state.gdateField = gdateFieldRecurrenceStart
	case tagRecurrence:
		p.currentRecurrence = domain.NewRecurrence(domain.PeriodMonth, 1)
	}
}

func (p *Parser) endElement(name string) error {
	text := strings.TrimSpace(p.content.String())
	p.content.Reset()

	switch name {
	case tagBookID:
		p.book.UID = text
	case tagCountData:
		// informational only

	case tagCommoditySpace:
		p.state.commoditySpace = text
	case tagCommodityID:
		p.applyCommodity(text)
	case tagAccountCommodity, tagTransactionCurrency:
		p.state.commodityTarget = commodityTargetNone
		p.state.commoditySpace = ""

	case tagAccountName:
		p.currentAccount.Name = text
	case tagAccountID:
		p.currentAccount.UID = text
	case tagAccountType:
		p.currentAccount.AccountType = domain.AccountType(text)
		if p.currentAccount.IsRoot() {
			// ROOT is structural and never shown.
			p.currentAccount.Hidden = true
		}
	case tagAccountDescription:
		p.currentAccount.Description = text
	case tagAccountCommoditySCU:
		scu, err := strconv.ParseInt(text, 10, 64)
		if err != nil || scu <= 0 {
			return p.fatal(name, fmt.Errorf("invalid commodity scu %q", text))
		}
		p.currentAccount.Commodity.SmallestFraction = scu
	case tagAccountParent:
		p.currentAccount.ParentUID = text
	case tagAccount:
		p.closeAccount()

	case tagTransactionID:
		p.currentTransaction.UID = text
	case tagTransactionDescription:
		p.currentTransaction.Description = text
	case tagTsDate:
		ts, err := time.Parse(tsDateLayout, text)
		if err != nil {
			// Streaming parsers cannot resynchronize mid-document; a bad
			// date aborts the whole import.
			return p.fatal(name, err)
		}
		switch p.state.dateField {
		case dateFieldPosted:
			p.currentTransaction.Timestamp = ts
		case dateFieldEntered:
			p.currentTransaction.CreatedAt = ts
		}
	case tagDatePosted, tagDateEntered:
		p.state.dateField = dateFieldNone
	case tagRecurrencePeriod:
		millis, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return p.fatal(name, err)
		}
		if millis > 0 {
			p.state.legacyPeriodMillis = millis
			p.currentTransaction.IsTemplate = true
		}
	case tagTransaction:
		p.closeTransaction()

	case tagSplitID:
		p.currentSplit.UID = text
	case tagSplitMemo:
		p.currentSplit.Memo = text
	case tagSplitReconciledState:
		p.currentSplit.ReconcileState = domain.ReconcileState(text)
	case tagSplitValue:
		amount, err := p.parseAmount(text, p.currentTransaction.Commodity)
		if err != nil {
			return p.fatal(name, err)
		}
		if amount.IsNegative() {
			p.currentSplit.SplitType = domain.Credit
		} else {
			p.currentSplit.SplitType = domain.Debit
		}
		p.currentSplit.Amount = amount.Abs()
	case tagSplitQuantity:
		// quantity equals value for single-commodity transactions
	case tagSplitAccount:
		p.currentSplit.AccountUID = text
		if p.state.inTemplates && p.currentTransaction != nil {
			p.templateAccountTxn[text] = p.currentTransaction.UID
		}
	case tagTransactionSplit:
		if p.currentSplit.UID == "" {
			p.currentSplit.UID = uuid.NewString()
		}
		p.currentTransaction.AddSplit(p.currentSplit)
		p.currentSplit = nil

	case tagSlotKey:
		p.state.pendingSlotKey = text
	case tagSlotValue:
		n := len(p.state.valueIsFrame)
		isFrame := p.state.valueIsFrame[n-1]
		p.state.valueIsFrame = p.state.valueIsFrame[:n-1]
		if isFrame {
			p.state.frameKeys = p.state.frameKeys[:len(p.state.frameKeys)-1]
		} else {
			p.applySlot(p.state.pendingSlotKey, text)
		}
	case tagAccountSlots, tagTransactionSlots, tagSplitSlots:
		p.state.slotScope = slotScopeNone
		p.state.pendingSlotKey = ""

	case tagSxID:
		p.currentScheduledAction.UID = text
	case tagSxName:
		if strings.EqualFold(text, string(domain.ActionBackup)) {
			p.currentScheduledAction.ActionType = domain.ActionBackup
		}
	case tagSxEnabled:
		p.currentScheduledAction.Enabled = text == "y"
	case tagSxAutoCreate:
		p.currentScheduledAction.AutoCreate = text == "y"
	case tagSxAutoCreateNotify:
		p.currentScheduledAction.AutoNotify = text == "y"
	case tagSxAdvanceCreateDays:
		v, err := strconv.Atoi(text)
		if err != nil {
			return p.fatal(name, err)
		}
		p.currentScheduledAction.AdvanceCreateDays = v
	case tagSxAdvanceRemindDays:
		v, err := strconv.Atoi(text)
		if err != nil {
			return p.fatal(name, err)
		}
		p.currentScheduledAction.AdvanceNotifyDays = v
	case tagSxInstanceCount:
		v, err := strconv.Atoi(text)
		if err != nil {
			return p.fatal(name, err)
		}
		p.currentScheduledAction.ExecutionCount = v
	case tagSxNumOccur:
		v, err := strconv.Atoi(text)
		if err != nil {
			return p.fatal(name, err)
		}
		p.currentScheduledAction.TotalPlannedCount = v
	case tagSxRemOccur:
		v, err := strconv.Atoi(text)
		if err != nil {
			return p.fatal(name, err)
		}
		if p.currentScheduledAction.ExecutionCount == 0 {
			p.currentScheduledAction.ExecutionCount = p.currentScheduledAction.TotalPlannedCount - v
		}
	case tagSxTemplAccount:
		p.currentScheduledAction.TemplateAccountUID = text
	case tagGDate:
		d, err := time.Parse(gDateLayout, text)
		if err != nil {
			return p.fatal(name, err)
		}
		p.applyGDate(d)
	case tagSxStart, tagSxLast, tagSxEnd, tagRecurrenceStart:
		p.state.gdateField = gdateFieldNone

	case tagRecurrenceMult:
		v, err := strconv.Atoi(text)
		if err != nil {
			return p.fatal(name, err)
		}
		// The multiplier arrives in its own tag and scales the period
		// before the recurrence is stored.
		p.currentRecurrence.Multiplier = v
	case tagRecurrencePeriodType:
		pt := domain.PeriodType(strings.ToUpper(text))
		switch pt {
		case domain.PeriodDay, domain.PeriodWeek, domain.PeriodMonth, domain.PeriodYear:
			p.currentRecurrence.PeriodType = pt
		default:
			return p.fatal(name, fmt.Errorf("unknown recurrence period type %q", text))
		}
	case tagRecurrence:
		if p.currentScheduledAction != nil {
			p.currentScheduledAction.Recurrence = p.currentRecurrence
		}
		p.currentRecurrence = nil
	case tagScheduledAction:
		p.scheduledActions = append(p.scheduledActions, p.currentScheduledAction)
		p.currentScheduledAction = nil

	case tagTemplateTransactions:
		p.state.inTemplates = false
	}
	return nil
}

// applyCommodity resolves the (space, id) pair accumulated from the last
// cmdty:space/cmdty:id tags onto the current target. Only the ISO4217
// namespace denotes a real currency; everything else maps to the XXX
// sentinel.
func (p *Parser) applyCommodity(code string) {
	var commodity domain.Commodity
	if p.state.commoditySpace == domain.CommodityNamespaceISO4217 {
		if c, ok := p.lookup(code); ok {
			commodity = c
		} else {
			commodity = domain.Commodity{
				Namespace:        domain.CommodityNamespaceISO4217,
				Mnemonic:         code,
				SmallestFraction: 100,
			}
		}
	} else {
		commodity = domain.NoCurrency()
	}

	switch p.state.commodityTarget {
	case commodityTargetAccount:
		p.currentAccount.Commodity = commodity
	case commodityTargetTransaction:
		p.currentTransaction.Commodity = commodity
		p.currentTransaction.CurrencyCode = commodity.Mnemonic
	}
}

// applySlot routes a generic (key, value) slot pair to the field implied by
// the current scope and the most recently seen key. Unrecognized keys are
// skipped.
func (p *Parser) applySlot(key, value string) {
	switch p.state.slotScope {
	case slotScopeAccount:
		switch key {
		case slotKeyPlaceholder:
			p.currentAccount.Placeholder = value == "true"
		case slotKeyHidden:
			p.currentAccount.Hidden = value == "true"
		case slotKeyFavorite:
			p.currentAccount.Favorite = value == "true"
		case slotKeyColor:
			if colorPattern.MatchString(value) {
				p.currentAccount.Color = value
			} else {
				// Degraded but importable: the account keeps its default
				// color.
				p.logger.Warn("ignoring invalid account color",
					slog.String("account", p.currentAccount.Name),
					slog.String("color", value))
			}
		case slotKeyDefaultTransferAccount:
			p.currentAccount.DefaultTransferAccountUID = value
		}
	case slotScopeTransaction:
		switch key {
		case slotKeyNotes:
			p.currentTransaction.Notes = value
		case slotKeyExported:
			p.currentTransaction.IsExported = value == "true"
		case slotKeyFromScheduledAction:
			p.currentTransaction.ScheduledActionUID = value
		}
	case slotScopeSplit:
		if !p.state.inTemplates || !p.state.inSchedXActionFrame() {
			return
		}
		switch key {
		case slotKeySplitAccount:
			p.currentSplit.AccountUID = value
		case slotKeyCreditFormula:
			p.applyFormula(value, domain.Credit)
		case slotKeyDebitFormula:
			p.applyFormula(value, domain.Debit)
		}
	}
}

// applyFormula parses a locale-sensitive template formula and sets the
// synthetic split's amount and direction. A formula that fails to parse is
// logged and the split keeps its prior amount.
func (p *Parser) applyFormula(value string, splitType domain.TransactionType) {
	if strings.TrimSpace(value) == "" {
		return
	}
	amount, err := p.formulaFormat.Parse(value)
	if err != nil {
		p.logger.Warn("ignoring unparseable template formula",
			slog.String("formula", value),
			slog.String("error", err.Error()))
		return
	}
	p.currentSplit.Amount = domain.NewMoney(amount.Abs(), p.currentTransaction.Commodity)
	p.currentSplit.SplitType = splitType
}

func (p *Parser) applyGDate(d time.Time) {
	switch p.state.gdateField {
	case gdateFieldSxStart:
		p.currentScheduledAction.StartTime = d
	case gdateFieldSxLast:
		p.currentScheduledAction.LastRunTime = d
	case gdateFieldSxEnd:
		p.currentScheduledAction.EndTime = d
	case gdateFieldRecurrenceStart:
		if p.currentRecurrence != nil {
			p.currentRecurrence.PeriodStart = d
		}
	}
}

// closeAccount finishes the account under construction. Accounts inside the
// template-transactions section exist only to host formulae and never reach
// the account list.
func (p *Parser) closeAccount() {
	acct := p.currentAccount
	p.currentAccount = nil
	if p.state.inTemplates {
		return
	}
	p.accounts = append(p.accounts, acct)
	if acct.IsRoot() && p.book.RootAccountUID == "" {
		p.book.RootAccountUID = acct.UID
	}
}

// closeTransaction finishes the transaction under construction, recording a
// pending legacy schedule when the retired recurrence-period field was seen.
func (p *Parser) closeTransaction() {
	txn := p.currentTransaction
	p.currentTransaction = nil
	p.transactions = append(p.transactions, txn)

	if p.state.legacyPeriodMillis > 0 {
		p.legacySchedules = append(p.legacySchedules, legacySchedule{
			transactionUID: txn.UID,
			periodMillis:   p.state.legacyPeriodMillis,
			start:          txn.Timestamp,
		})
		p.state.legacyPeriodMillis = 0
	}
}

// parseAmount reads a "numerator/denominator" rational (or a plain decimal,
// for hand-edited files) into an exact Money value.
func (p *Parser) parseAmount(text string, commodity domain.Commodity) (domain.Money, error) {
	if numStr, denomStr, ok := strings.Cut(text, "/"); ok {
		num, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			return domain.Money{}, fmt.Errorf("invalid amount numerator %q", text)
		}
		denom, err := strconv.ParseInt(denomStr, 10, 64)
		if err != nil || denom <= 0 {
			return domain.Money{}, fmt.Errorf("invalid amount denominator %q", text)
		}
		amount := decimal.NewFromInt(num).
			DivRound(decimal.NewFromInt(denom), commodity.FractionDigits()+4)
		return domain.NewMoney(amount, commodity), nil
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return domain.Money{}, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return domain.NewMoney(amount, commodity), nil
}

func (p *Parser) fatal(element string, err error) error {
	return &ParseError{Offset: p.decoder.InputOffset(), Element: element, Err: err}
}

// finish runs the post-pass: full-name resolution, legacy recurrence
// translation and template-account linkage.
func (p *Parser) finish() (*Result, error) {
	if err := domain.ResolveFullNames(p.accounts); err != nil {
		return nil, err
	}

	for _, legacy := range p.legacySchedules {
		recurrence := domain.RecurrenceFromLegacyPeriod(legacy.periodMillis)
		recurrence.PeriodStart = legacy.start
		p.scheduledActions = append(p.scheduledActions, &domain.ScheduledAction{
			UID:        uuid.NewString(),
			ActionType: domain.ActionTransaction,
			ActionUID:  legacy.transactionUID,
			StartTime:  legacy.start,
			Enabled:    true,
			Recurrence: recurrence,
		})
	}

	for _, sa := range p.scheduledActions {
		if sa.ActionUID == "" && sa.TemplateAccountUID != "" {
			sa.ActionUID = p.templateAccountTxn[sa.TemplateAccountUID]
		}
	}

	if p.book.UID == "" {
		p.book.UID = uuid.NewString()
	}
	return &Result{
		Book:             p.book,
		Accounts:         p.accounts,
		Transactions:     p.transactions,
		ScheduledActions: p.scheduledActions,
	}, nil
}
