package log_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"

	"github.com/nrfta/admin-go/internal/log"
)

var _ = Describe("NewLogger", func() {
	It("should log at info level in prod", func() {
		logger, err := log.NewLogger("prod")
		Expect(err).ToNot(HaveOccurred())
		Expect(logger.Core().Enabled(zapcore.DebugLevel)).To(BeFalse())
		Expect(logger.Core().Enabled(zapcore.InfoLevel)).To(BeTrue())
	})

	It("should log at debug level elsewhere", func() {
		logger, err := log.NewLogger("dev")
		Expect(err).ToNot(HaveOccurred())
		Expect(logger.Core().Enabled(zapcore.DebugLevel)).To(BeTrue())
	})
})
