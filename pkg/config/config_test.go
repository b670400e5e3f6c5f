package config_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/azurechat/pkg/config"
)

var allKeys = []string{
	config.EnvModel,
	config.EnvEndpoint,
	config.EnvKey,
	config.EnvVersion,
	config.EnvListen,
	config.EnvDebug,
	config.EnvConfigFile,
}

// setEnv sets key until the current test finishes.
func setEnv(key, val string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, val)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		for _, key := range allKeys {
			setEnv(key, "")
			os.Unsetenv(key)
		}
	})

	setAzure := func() {
		setEnv(config.EnvModel, "gpt-4o-hikes")
		setEnv(config.EnvEndpoint, "https://forest.openai.azure.com")
		setEnv(config.EnvKey, "secret")
		setEnv(config.EnvVersion, "2024-06-01")
	}

	It("loads the four Azure settings and defaults the rest", func() {
		setAzure()

		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Azure).To(Equal(config.Azure{
			Deployment: "gpt-4o-hikes",
			Endpoint:   "https://forest.openai.azure.com",
			APIKey:     "secret",
			APIVersion: "2024-06-01",
		}))
		Expect(cfg.ListenAddr).To(Equal(config.DefaultListenAddr))
		Expect(cfg.Debug).To(BeFalse())
		Expect(cfg.Persona).To(BeEmpty())
	})

	It("reports every missing Azure setting in one error", func() {
		setEnv(config.EnvEndpoint, "https://forest.openai.azure.com")

		cfg, err := config.Load()
		Expect(cfg).To(BeNil())

		var cfgErr *config.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Missing).To(ConsistOf(config.EnvModel, config.EnvKey, config.EnvVersion))
	})

	It("rejects an unparseable debug flag", func() {
		setAzure()
		setEnv(config.EnvDebug, "sometimes")

		_, err := config.Load()
		var cfgErr *config.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Error()).To(ContainSubstring(config.EnvDebug))
	})

	Context("with a settings file", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "azurechat.toml")
			Expect(os.WriteFile(path, []byte(`
listen_addr = ":9000"
debug = true
persona = "You are a terse trail guide."
`), 0o600)).To(Succeed())
			setEnv(config.EnvConfigFile, path)
		})

		It("applies file values", func() {
			setAzure()

			cfg, err := config.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ListenAddr).To(Equal(":9000"))
			Expect(cfg.Debug).To(BeTrue())
			Expect(cfg.Persona).To(Equal("You are a terse trail guide."))
		})

		It("lets the environment override the file", func() {
			setAzure()
			setEnv(config.EnvListen, ":7000")
			setEnv(config.EnvDebug, "false")

			cfg, err := config.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ListenAddr).To(Equal(":7000"))
			Expect(cfg.Debug).To(BeFalse())
		})

		It("still requires the Azure settings", func() {
			_, err := config.Load()
			var cfgErr *config.ConfigurationError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Missing).To(HaveLen(4))
		})
	})

	It("fails when the settings file cannot be read", func() {
		setAzure()
		setEnv(config.EnvConfigFile, filepath.Join(GinkgoT().TempDir(), "missing.toml"))

		_, err := config.Load()
		var cfgErr *config.ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Missing).To(BeEmpty())
	})
})

var _ = Describe("Azure.Validate", func() {
	valid := config.Azure{
		Endpoint:   "https://forest.openai.azure.com",
		APIKey:     "secret",
		Deployment: "gpt-4o-hikes",
		APIVersion: "2024-06-01",
	}

	It("accepts a complete set", func() {
		Expect(valid.Validate()).To(Succeed())
	})

	DescribeTable("rejects a blank parameter",
		func(mutate func(*config.Azure), name string) {
			a := valid
			mutate(&a)

			var cfgErr *config.ConfigurationError
			Expect(errors.As(a.Validate(), &cfgErr)).To(BeTrue())
			Expect(cfgErr.Missing).To(Equal([]string{name}))
		},
		Entry("deployment", func(a *config.Azure) { a.Deployment = "" }, config.EnvModel),
		Entry("endpoint", func(a *config.Azure) { a.Endpoint = "  " }, config.EnvEndpoint),
		Entry("key", func(a *config.Azure) { a.APIKey = "" }, config.EnvKey),
		Entry("version", func(a *config.Azure) { a.APIVersion = "" }, config.EnvVersion),
	)
})
