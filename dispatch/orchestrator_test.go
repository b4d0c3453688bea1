package dispatch

import (
	"errors"
	"sync"
	"testing"

	"github.com/dilshat/message-sender/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const MESSAGE_ID uint32 = 7

type mockStore struct {
	message     model.Message
	recipients  []Recipient
	attachments []model.Attachment

	mu              sync.Mutex
	attachmentCalls int
	updatedStatus   string
	updatedInfo     string
	history         []string
	updateErr       error
}

//status is safe to call while the queue worker is running
func (m *mockStore) status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatedStatus
}

func (m *mockStore) GetMessage(id uint32) (model.Message, error) {
	return m.message, nil
}

func (m *mockStore) GetRecipients(messageId uint32) ([]Recipient, error) {
	return m.recipients, nil
}

func (m *mockStore) GetAttachments(messageId uint32) ([]model.Attachment, error) {
	m.attachmentCalls++
	return m.attachments, nil
}

func (m *mockStore) UpdateMessageStatus(id uint32, status, deliveryInfo string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatedStatus = status
	m.updatedInfo = deliveryInfo
	return nil
}

func (m *mockStore) AppendStatusHistory(messageId uint32, action, status, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, action+"/"+status)
	return nil
}

type mockSender struct {
	method     string
	configured bool
	keys       []string
	results    []Result
	sendErr    error
	panics     bool

	sendCalls      int
	gotAttachments []model.Attachment
	validateCalls  int
}

func (m *mockSender) Method() string       { return m.method }
func (m *mockSender) Configured() bool     { return m.configured }
func (m *mockSender) RecordKeys() []string { return m.keys }

func (m *mockSender) Validate() error {
	m.validateCalls++
	return nil
}

func (m *mockSender) Send(msg model.Message, recipients []Recipient, attachments []model.Attachment) ([]Result, error) {
	m.sendCalls++
	m.gotAttachments = attachments
	if m.panics {
		panic("sender blew up")
	}
	return m.results, m.sendErr
}

func successSender(method, key, recipient string) *mockSender {
	return &mockSender{
		method:     method,
		configured: true,
		keys:       []string{key},
		results: []Result{{
			Recipient: recipient,
			Success:   true,
			Records:   map[string]DeliveryRecord{key: {Success: true, Delivered: true}},
		}},
	}
}

func failingSender(method, key, recipient, errMsg string) *mockSender {
	return &mockSender{
		method:     method,
		configured: true,
		keys:       []string{key},
		results: []Result{{
			Recipient: recipient,
			Success:   false,
			Records:   map[string]DeliveryRecord{key: {Error: errMsg}},
		}},
	}
}

func TestOrchestrator_AvailableMethods(t *testing.T) {
	email := &mockSender{method: EMAIL, configured: true}
	telegram := &mockSender{method: TELEGRAM, configured: false}
	vk := &mockSender{method: VK, configured: true}
	o := NewOrchestrator(&mockStore{}, email, telegram, vk)

	//unconfigured and unknown methods drop out, duplicates collapse
	available := o.AvailableMethods([]string{VK, TELEGRAM, EMAIL, EMAIL, "fax"})

	assert.Equal(t, []string{EMAIL, VK}, available)

	assert.Empty(t, o.AvailableMethods([]string{TELEGRAM}))
	assert.Empty(t, o.AvailableMethods(nil))
}

func TestOrchestrator_DispatchSetsSent(t *testing.T) {
	store := &mockStore{
		message: model.Message{
			Id:              MESSAGE_ID,
			Content:         "Hello",
			DeliveryMethods: []string{TELEGRAM},
			Status:          model.PENDING,
		},
		recipients: []Recipient{{TelegramChatId: RECIPIENT2}},
	}
	o := NewOrchestrator(store, successSender(TELEGRAM, TELEGRAM, RECIPIENT2))

	err := o.Dispatch(MESSAGE_ID, true)

	require.NoError(t, err)
	assert.Equal(t, model.SENT, store.updatedStatus)
	assert.Equal(t, []string{model.STATUS_CHANGE + "/" + model.SENT}, store.history)

	info := ParseDeliveryInfo(store.updatedInfo)
	assert.True(t, info.HasSuccess(TELEGRAM))
}

func TestOrchestrator_DispatchSetsFailed(t *testing.T) {
	store := &mockStore{
		message: model.Message{
			Id:              MESSAGE_ID,
			Content:         "Hello",
			DeliveryMethods: []string{TELEGRAM},
			Status:          model.PENDING,
		},
		recipients: []Recipient{{TelegramChatId: RECIPIENT2}},
	}
	o := NewOrchestrator(store, failingSender(TELEGRAM, TELEGRAM, RECIPIENT2, "chat not found"))

	err := o.Dispatch(MESSAGE_ID, true)

	require.NoError(t, err)
	assert.Equal(t, model.FAILED, store.updatedStatus)

	info := ParseDeliveryInfo(store.updatedInfo)
	assert.Equal(t, "chat not found", info[RECIPIENT2][TELEGRAM].Error)
}

func TestOrchestrator_ChannelFailureDoesNotAbortOthers(t *testing.T) {
	store := &mockStore{
		message: model.Message{
			Id:              MESSAGE_ID,
			Content:         "Hello",
			DeliveryMethods: []string{VK, TELEGRAM},
		},
		recipients: []Recipient{{TelegramChatId: RECIPIENT2, VkId: RECIPIENT2}},
	}
	vk := &mockSender{method: VK, configured: true, keys: []string{VK}, sendErr: errors.New("community unreachable")}
	telegram := successSender(TELEGRAM, TELEGRAM, RECIPIENT2)
	o := NewOrchestrator(store, vk, telegram)

	err := o.Dispatch(MESSAGE_ID, true)

	require.NoError(t, err)
	assert.Equal(t, 1, telegram.sendCalls)
	assert.Equal(t, model.SENT, store.updatedStatus)
}

func TestOrchestrator_SenderPanicIsContained(t *testing.T) {
	store := &mockStore{
		message: model.Message{
			Id:              MESSAGE_ID,
			Content:         "Hello",
			DeliveryMethods: []string{VK, TELEGRAM},
		},
		recipients: []Recipient{{TelegramChatId: RECIPIENT2}},
	}
	vk := &mockSender{method: VK, configured: true, keys: []string{VK}, panics: true}
	telegram := successSender(TELEGRAM, TELEGRAM, RECIPIENT2)
	o := NewOrchestrator(store, vk, telegram)

	err := o.Dispatch(MESSAGE_ID, true)

	require.NoError(t, err)
	assert.Equal(t, model.SENT, store.updatedStatus)
}

func TestOrchestrator_MergePreservesPriorSuccess(t *testing.T) {
	//first run succeeded over telegram, the resend fails: the old success
	//must survive the merge and keep the aggregate status sent
	prior := DeliveryInfo{
		RECIPIENT2: {TELEGRAM: {Success: true, Delivered: true}},
	}
	serialized, err := prior.Serialize()
	require.NoError(t, err)

	store := &mockStore{
		message: model.Message{
			Id:              MESSAGE_ID,
			Content:         "Hello",
			DeliveryMethods: []string{TELEGRAM, VK},
			DeliveryInfo:    serialized,
		},
		recipients: []Recipient{{TelegramChatId: RECIPIENT2, VkId: RECIPIENT2}},
	}
	telegram := successSender(TELEGRAM, TELEGRAM, RECIPIENT2)
	vk := failingSender(VK, VK, RECIPIENT2, "user not found")
	o := NewOrchestrator(store, telegram, vk)

	err = o.Dispatch(MESSAGE_ID, false)

	require.NoError(t, err)
	info := ParseDeliveryInfo(store.updatedInfo)
	assert.True(t, info.HasSuccess(TELEGRAM))
	assert.Equal(t, "user not found", info[RECIPIENT2][VK].Error)
}

func TestOrchestrator_AttachmentsSkippedWhenExcluded(t *testing.T) {
	store := &mockStore{
		message: model.Message{
			Id:              MESSAGE_ID,
			Content:         "Hello",
			DeliveryMethods: []string{TELEGRAM},
		},
		recipients:  []Recipient{{TelegramChatId: RECIPIENT2}},
		attachments: []model.Attachment{{Path: "f.txt", OriginalName: "f.txt"}},
	}
	telegram := successSender(TELEGRAM, TELEGRAM, RECIPIENT2)
	o := NewOrchestrator(store, telegram)

	require.NoError(t, o.Dispatch(MESSAGE_ID, false))

	assert.Zero(t, store.attachmentCalls)
	assert.Empty(t, telegram.gotAttachments)
}

func TestOrchestrator_PersistenceFailureAbortsRun(t *testing.T) {
	store := &mockStore{
		message: model.Message{
			Id:              MESSAGE_ID,
			Content:         "Hello",
			DeliveryMethods: []string{TELEGRAM},
		},
		recipients: []Recipient{{TelegramChatId: RECIPIENT2}},
		updateErr:  errors.New("db closed"),
	}
	o := NewOrchestrator(store, successSender(TELEGRAM, TELEGRAM, RECIPIENT2))

	err := o.Dispatch(MESSAGE_ID, true)

	require.Error(t, err)
	assert.Empty(t, store.history)
}

func TestOrchestrator_FullyDelivered(t *testing.T) {
	email := &mockSender{method: EMAIL, configured: true, keys: []string{KEY_ACCT1, KEY_ACCT2}}
	telegram := &mockSender{method: TELEGRAM, configured: true, keys: []string{TELEGRAM}}
	o := NewOrchestrator(&mockStore{}, email, telegram)

	//email needs a success under every account key
	partial := DeliveryInfo{
		RECIPIENT: {KEY_ACCT1: {Success: true}},
	}
	assert.False(t, o.FullyDelivered([]string{EMAIL}, partial))

	full := DeliveryInfo{
		RECIPIENT:  {KEY_ACCT1: {Success: true}, KEY_ACCT2: {Success: true}},
		RECIPIENT2: {TELEGRAM: {Success: true}},
	}
	assert.True(t, o.FullyDelivered([]string{EMAIL}, full))
	assert.True(t, o.FullyDelivered([]string{EMAIL, TELEGRAM}, full))

	//unknown methods can never be fully delivered
	assert.False(t, o.FullyDelivered([]string{VK}, full))

	//vacuously true without requested methods
	assert.True(t, o.FullyDelivered(nil, DeliveryInfo{}))
}

func TestOrchestrator_FullyDeliveredNoKeys(t *testing.T) {
	email := &mockSender{method: EMAIL, configured: false, keys: nil}
	o := NewOrchestrator(&mockStore{}, email)

	assert.False(t, o.FullyDelivered([]string{EMAIL}, DeliveryInfo{}))
}
