package service

import (
	"os"
	"testing"

	"github.com/growyourneed/crm_backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}
