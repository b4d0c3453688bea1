package controller

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dilshat/message-sender/log"
	"github.com/dilshat/message-sender/service"
	"github.com/dilshat/message-sender/service/dto"
	"github.com/labstack/echo/v4"
)

// SendMessage godoc
// @Summary Send message
// @Description Accepts a message with recipients, delivery methods and attachments, queues delivery and returns immediately
// @Accept mpfd
// @Produce json
// @Param subject formData string false "Subject"
// @Param content formData string true "Message text"
// @Param deliveryMethods formData string true "Delivery methods, json array or comma separated"
// @Param recipients formData string false "Contact ids, json array"
// @Param customAddresses formData string false "Custom addresses, json array"
// @Param attachments formData file false "Attachments"
// @Success 200 {object} dto.SendMessageResponse
// @Failure 400 "error description"
// @Router /api/messages [post]
func GetSendMessageFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		msg := dto.SendMessageRequest{
			Subject:         c.FormValue("subject"),
			Content:         c.FormValue("content"),
			DeliveryMethods: parseMethods(c.FormValue("deliveryMethods")),
			ContactIds:      parseIds(c.FormValue("recipients")),
			CustomAddresses: parseStrings(c.FormValue("customAddresses")),
		}

		var files []*multipart.FileHeader
		if form, err := c.MultipartForm(); err == nil && form != nil {
			files = form.File["attachments"]
		}

		resp, err := srv.SendMessage(msg, files)
		if err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, resp)
	}
}

// ResendMessage godoc
// @Summary Resend message
// @Description Re-runs delivery of an existing message over its original delivery methods
// @Produce json
// @Param id path int true "Message id"
// @Success 200 {object} dto.Id
// @Failure 404 "error description"
// @Router /api/messages/{id}/resend [post]
func GetResendMessageFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseIdParam(c)
		if err != nil {
			return err
		}

		if err := srv.ResendMessage(id); err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, dto.Id{Id: id})
	}
}

// GetMessages godoc
// @Summary List messages
// @Description Returns all messages, newest first
// @Produce json
// @Success 200 {array} dto.MessageListItem
// @Router /api/messages [get]
func GetMessagesFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		messages, err := srv.GetMessages()
		if err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, messages)
	}
}

// GetMessageDetails godoc
// @Summary Message details
// @Description Returns a message with parsed delivery info and the fully delivered verdict
// @Produce json
// @Param id path int true "Message id"
// @Success 200 {object} dto.MessageDetails
// @Failure 404 "error description"
// @Router /api/messages/{id} [get]
func GetMessageDetailsFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseIdParam(c)
		if err != nil {
			return err
		}

		details, err := srv.GetMessageDetails(id)
		if err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, details)
	}
}

// GetStatusHistory godoc
// @Summary Message status history
// @Description Returns the audit trail of a message, newest first
// @Produce json
// @Param id path int true "Message id"
// @Success 200 {array} dto.StatusHistoryEntry
// @Router /api/messages/{id}/history [get]
func GetStatusHistoryFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseIdParam(c)
		if err != nil {
			return err
		}

		history, err := srv.GetStatusHistory(id)
		if err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, history)
	}
}

// GetContacts godoc
// @Summary List contacts
// @Produce json
// @Success 200 {array} dto.Contact
// @Router /api/contacts [get]
func GetContactsFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		contacts, err := srv.GetContacts()
		if err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, contacts)
	}
}

// CreateContact godoc
// @Summary Create contact
// @Accept json
// @Produce json
// @Param contact body dto.Contact true "Contact"
// @Success 200 {object} dto.Id
// @Failure 400 "error description"
// @Router /api/contacts [post]
func GetCreateContactFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		contact := new(dto.Contact)
		if err := c.Bind(contact); err != nil {
			return err
		}

		id, err := srv.CreateContact(*contact)
		if err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, id)
	}
}

// DeleteContact godoc
// @Summary Delete contact
// @Produce json
// @Param id path int true "Contact id"
// @Success 200 {object} dto.Id
// @Failure 404 "error description"
// @Router /api/contacts/{id} [delete]
func GetDeleteContactFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseIdParam(c)
		if err != nil {
			return err
		}

		if err := srv.DeleteContact(id); err != nil {
			return handleError(c, err)
		}

		return c.JSON(http.StatusOK, dto.Id{Id: id})
	}
}

// GetConfigStatus godoc
// @Summary Configuration status
// @Description Reports which delivery channels have usable configuration
// @Produce json
// @Success 200 {object} dto.ConfigStatus
// @Router /api/config-status [get]
func GetConfigStatusFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, srv.ConfigStatus())
	}
}

func parseIdParam(c echo.Context) (uint32, error) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid id "+c.Param("id"))
	}
	return uint32(id64), nil
}

//parseMethods accepts both a json array and a comma separated list
func parseMethods(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var methods []string
	if err := json.Unmarshal([]byte(raw), &methods); err == nil {
		return methods
	}

	for _, m := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			methods = append(methods, trimmed)
		}
	}
	return methods
}

func parseIds(raw string) []uint32 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var ids []uint32
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

func parseStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func handleError(c echo.Context, err error) error {
	switch err.(type) {
	case *service.InvalidPayloadErr, *service.NoDeliveryMethodErr:
		return c.String(http.StatusBadRequest, err.Error())
	default:
		if err.Error() == "not found" {
			return c.String(http.StatusNotFound, "Not found")
		}
		log.Error.Println(err)
		return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
	}
}
