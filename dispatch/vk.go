package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/dilshat/message-sender/model"
	"github.com/dilshat/message-sender/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	vkSendPause       = time.Second
	vkRequestTimeout  = 30 * time.Second
	vkUploadTimeout   = 60 * time.Second
	vkRandomIdCeiling = 1000000
)

type vkError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type vkGroup struct {
	Id         int    `json:"id"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

type vkGroupsResponse struct {
	Response []vkGroup `json:"response"`
	Error    *vkError  `json:"error"`
}

type vkUploadServer struct {
	UploadUrl string `json:"upload_url"`
}

type vkUploadServerResponse struct {
	Response *vkUploadServer `json:"response"`
	Error    *vkError        `json:"error"`
}

type vkUploadResult struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type vkDoc struct {
	Id      int `json:"id"`
	OwnerId int `json:"owner_id"`
}

type vkSaveResponse struct {
	Response []vkDoc  `json:"response"`
	Error    *vkError `json:"error"`
}

type vkSendResponse struct {
	Response *int     `json:"response"`
	Error    *vkError `json:"error"`
}

//VkSender sends messages to users through a community. Community identity is
//resolved once per run. Documents are uploaded with a two-strategy fallback:
//a streamed upload first, a fully buffered one on its failure. The strategies
//use materially different transports on purpose, do not unify them.
type VkSender struct {
	config  VkConfig
	client  *http.Client
	limiter RateLimiter
	//randomId generates the client-side idempotency token of messages.send
	randomId func() int
}

func NewVkSender(config VkConfig) *VkSender {
	return &VkSender{
		config:   config,
		client:   &http.Client{Timeout: vkUploadTimeout},
		limiter:  rate.NewLimiter(rate.Every(vkSendPause), 1),
		randomId: func() int { return rand.Intn(vkRandomIdCeiling) },
	}
}

func (s *VkSender) Method() string {
	return VK
}

func (s *VkSender) Configured() bool {
	return s.config.Configured()
}

func (s *VkSender) RecordKeys() []string {
	return []string{VK}
}

func (s *VkSender) Validate() error {
	group, err := s.groupInfo()
	if err != nil {
		zap.L().Warn("Vk community unreachable", zap.Error(err))
		return err
	}
	zap.L().Info("Vk community reachable", zap.String("name", group.Name), zap.String("screenName", group.ScreenName))
	return nil
}

func (s *VkSender) Send(msg model.Message, recipients []Recipient, attachments []model.Attachment) ([]Result, error) {
	//resolve community identity once for the whole run
	group, err := s.groupInfo()
	if err != nil {
		return nil, fmt.Errorf("getting community info: %w", err)
	}

	var results []Result
	for _, recipient := range recipients {
		address, userId, ok := ResolveVk(recipient)
		if !ok {
			continue
		}

		records := map[string]DeliveryRecord{}
		success := false

		record, err := s.sendToUser(msg, userId, group.Id, attachments)
		if err != nil {
			zap.L().Error("Error sending vk message", zap.String("recipient", address), zap.Error(err))
			records[VK] = DeliveryRecord{Error: err.Error(), ViaGroup: true}
		} else {
			success = true
			records[VK] = record
		}

		results = append(results, Result{
			Recipient: address,
			Success:   success,
			Records:   records,
		})

		//pause between recipients to respect provider limits
		s.limiter.Wait(context.Background())
	}

	return results, nil
}

func (s *VkSender) sendToUser(msg model.Message, userId, groupId int, attachments []model.Attachment) (DeliveryRecord, error) {
	text := msg.Content
	if !util.IsBlank(msg.Subject) {
		text = msg.Subject + "\n\n" + msg.Content
	}

	var uploaded []string
	var fileErrors []string
	for _, att := range attachments {
		attachmentId, err := s.uploadDoc(att, userId)
		if err != nil {
			attachmentId, err = s.uploadDocBuffered(att, userId)
		}
		if err != nil {
			zap.L().Error("Error uploading vk document", zap.String("file", att.OriginalName), zap.Error(err))
			fileErrors = append(fileErrors, att.OriginalName+": "+err.Error())
		} else {
			uploaded = append(uploaded, attachmentId)
		}

		//pause between uploads
		s.limiter.Wait(context.Background())
	}

	params := url.Values{}
	params.Set("user_id", strconv.Itoa(userId))
	params.Set("message", text)
	params.Set("random_id", strconv.Itoa(s.randomId()))
	if len(uploaded) > 0 {
		attachmentStr := uploaded[0]
		for _, id := range uploaded[1:] {
			attachmentStr += "," + id
		}
		params.Set("attachment", attachmentStr)
	}

	var resp vkSendResponse
	if err := s.apiPost("messages.send", params, &resp); err != nil {
		return DeliveryRecord{}, err
	}
	if resp.Error != nil {
		return DeliveryRecord{}, fmt.Errorf("%s", resp.Error.Message)
	}
	if resp.Response == nil {
		return DeliveryRecord{}, fmt.Errorf("malformed messages.send response")
	}

	filesSent := len(uploaded) > 0
	return DeliveryRecord{
		Success:         true,
		Delivered:       true,
		MessageId:       strconv.Itoa(*resp.Response),
		ViaGroup:        true,
		GroupId:         groupId,
		FilesSent:       &filesSent,
		AttachmentCount: len(uploaded),
		FileErrors:      fileErrors,
	}, nil
}

func (s *VkSender) groupInfo() (vkGroup, error) {
	var resp vkGroupsResponse
	if err := s.apiGet("groups.getById", url.Values{}, &resp); err != nil {
		return vkGroup{}, err
	}
	if resp.Error != nil {
		return vkGroup{}, fmt.Errorf("%s", resp.Error.Message)
	}
	if len(resp.Response) == 0 {
		return vkGroup{}, fmt.Errorf("community info unavailable")
	}
	return resp.Response[0], nil
}

//uploadDoc is the primary upload path: the file is streamed from disk through
//a pipe, the request goes out chunked without a declared length.
func (s *VkSender) uploadDoc(att model.Attachment, userId int) (string, error) {
	uploadUrl, err := s.uploadServerUrl(userId)
	if err != nil {
		return "", err
	}

	file, err := os.Open(att.Path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", att.OriginalName)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if closeErr := mw.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequest(http.MethodPost, uploadUrl, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	uploadResult, err := s.doUpload(req)
	if err != nil {
		return "", err
	}

	return s.saveDoc(uploadResult.File, att.OriginalName)
}

//uploadDocBuffered is the fallback upload path: the file is read fully into
//memory and posted with an explicit content length.
func (s *VkSender) uploadDocBuffered(att model.Attachment, userId int) (string, error) {
	uploadUrl, err := s.uploadServerUrl(userId)
	if err != nil {
		return "", err
	}

	fileBytes, err := os.ReadFile(att.Path)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", att.OriginalName)
	if err != nil {
		return "", err
	}
	if _, err = part.Write(fileBytes); err != nil {
		return "", err
	}
	if err = mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, uploadUrl, bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = int64(body.Len())

	uploadResult, err := s.doUpload(req)
	if err != nil {
		return "", err
	}

	return s.saveDoc(uploadResult.File, att.OriginalName)
}

func (s *VkSender) uploadServerUrl(userId int) (string, error) {
	params := url.Values{}
	params.Set("type", "doc")
	params.Set("peer_id", strconv.Itoa(userId))

	var resp vkUploadServerResponse
	if err := s.apiGet("docs.getMessagesUploadServer", params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%s", resp.Error.Message)
	}
	if resp.Response == nil || resp.Response.UploadUrl == "" {
		return "", fmt.Errorf("no upload url in response")
	}
	return resp.Response.UploadUrl, nil
}

func (s *VkSender) doUpload(req *http.Request) (vkUploadResult, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return vkUploadResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return vkUploadResult{}, err
	}

	var result vkUploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return vkUploadResult{}, fmt.Errorf("malformed upload response: %s", string(body))
	}
	if result.Error != "" {
		return vkUploadResult{}, fmt.Errorf("%s", result.Error)
	}
	if result.File == "" {
		return vkUploadResult{}, fmt.Errorf("upload response misses file: %s", string(body))
	}
	return result, nil
}

func (s *VkSender) saveDoc(file, title string) (string, error) {
	params := url.Values{}
	params.Set("file", file)
	params.Set("title", title)

	var resp vkSaveResponse
	if err := s.apiGet("docs.save", params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%s", resp.Error.Message)
	}
	if len(resp.Response) == 0 {
		return "", fmt.Errorf("document was not saved")
	}

	doc := resp.Response[0]
	return fmt.Sprintf("doc%d_%d", doc.OwnerId, doc.Id), nil
}

func (s *VkSender) apiGet(method string, params url.Values, v interface{}) error {
	req, err := http.NewRequest(http.MethodGet, s.methodUrl(method, params), nil)
	if err != nil {
		return err
	}
	return s.doApi(req, v)
}

func (s *VkSender) apiPost(method string, params url.Values, v interface{}) error {
	req, err := http.NewRequest(http.MethodPost, s.methodUrl(method, params), nil)
	if err != nil {
		return err
	}
	return s.doApi(req, v)
}

func (s *VkSender) methodUrl(method string, params url.Values) string {
	params.Set("access_token", s.config.AccessToken)
	params.Set("v", s.config.ApiVersion)
	return s.config.ApiUrl + method + "?" + params.Encode()
}

func (s *VkSender) doApi(req *http.Request, v interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), vkRequestTimeout)
	defer cancel()

	resp, err := s.client.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(v)
}
