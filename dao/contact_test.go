package dao

import (
	"log"
	"testing"

	"github.com/dilshat/message-sender/model"
	"github.com/stretchr/testify/require"
)

const (
	NAME1  = "Bob"
	EMAIL1 = "bob@mail.com"
	NAME2  = "Alice"
	EMAIL2 = "alice@mail.com"
)

func prepareContactDB(t errorHandler) (Db, func()) {
	db, cleanup := createDB(t)

	for _, c := range []*model.Contact{
		{Name: NAME1, Email: EMAIL1, TelegramChatId: "111"},
		{Name: NAME2, Email: EMAIL2, VkId: "222"},
	} {
		if err := db.Save(c); err != nil {
			log.Fatal(err)
		}
	}

	return db, cleanup
}

func TestContactDao_Create(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	contactDao := NewContactDao(db)

	id, err := contactDao.Create(NAME1, EMAIL1, "111", "222")

	require.NoError(t, err)
	require.True(t, id > 0)
}

func TestContactDao_GetOneById(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	contactDao := NewContactDao(db)
	id, _ := contactDao.Create(NAME1, EMAIL1, "111", "")

	contact, err := contactDao.GetOneById(id)

	require.NoError(t, err)
	require.Equal(t, NAME1, contact.Name)
	require.Equal(t, EMAIL1, contact.Email)
	require.Equal(t, "111", contact.TelegramChatId)
}

func TestContactDao_GetAllOrderedByName(t *testing.T) {
	db, cleanup := prepareContactDB(t)
	defer cleanup()
	contactDao := NewContactDao(db)

	all, err := contactDao.GetAll()

	require.NoError(t, err)
	require.Equal(t, 2, len(all))
	require.Equal(t, NAME2, all[0].Name)
	require.Equal(t, NAME1, all[1].Name)
}

func TestContactDao_Delete(t *testing.T) {
	db, cleanup := prepareContactDB(t)
	defer cleanup()
	contactDao := NewContactDao(db)
	all, _ := contactDao.GetAll()

	err := contactDao.Delete(all[0].Id)

	require.NoError(t, err)

	left, _ := contactDao.GetAll()
	require.Equal(t, 1, len(left))
}

func TestContactDao_DeleteMissing(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	contactDao := NewContactDao(db)

	err := contactDao.Delete(uint32(999))

	require.Error(t, err)
}
