// Package validator registers pennywise's custom binding rules with gin.
package validator

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"pennywise/internal/models"
)

// iso4217 lists the active ISO 4217 currency codes.
const iso4217 = `
	AED AFN ALL AMD ANG AOA ARS AUD AWG AZN BAM BBD BDT BGN BHD
	BIF BMD BND BOB BRL BSD BTN BWP BYN BZD CAD CDF CHF CLP CNY
	COP CRC CUP CVE CZK DJF DKK DOP DZD EGP ERN ETB EUR FJD FKP
	GBP GEL GHS GIP GMD GNF GTQ GYD HKD HNL HRK HTG HUF IDR ILS
	INR IQD IRR ISK JMD JOD JPY KES KGS KHR KMF KPW KRW KWD KYD
	KZT LAK LBP LKR LRD LSL LYD MAD MDL MGA MKD MMK MNT MOP MRU
	MUR MVR MWK MXN MYR MZN NAD NGN NIO NOK NPR NZD OMR PAB PEN
	PGK PHP PKR PLN PYG QAR RON RSD RUB RWF SAR SBD SCR SDG SEK
	SGD SHP SLE SOS SRD SSP STN SVC SYP SZL THB TJS TMT TND TOP
	TRY TTD TWD TZS UAH UGX USD UYU UZS VES VND VUV WST XAF XCD
	XOF XPF YER ZAR ZMW ZWL
`

var currencies = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, code := range strings.Fields(iso4217) {
		set[code] = struct{}{}
	}
	return set
}()

var registerOnce sync.Once

// Register adds the iso4217, expense_type, platform and user_plan tags to
// gin's validator. Calling it again is a no-op.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		rules := map[string]validator.Func{
			"iso4217":      func(fl validator.FieldLevel) bool { return IsCurrency(fl.Field().String()) },
			"expense_type": oneOf(models.ExpenseTypeExpense, models.ExpenseTypeIncome),
			"platform":     oneOf(models.PlatformMobile, models.PlatformWeb),
			"user_plan":    oneOf(models.UserPlanFree, models.UserPlanPro, models.UserPlanAdmin),
		}
		for tag, fn := range rules {
			_ = v.RegisterValidation(tag, fn)
		}
	})
}

// IsCurrency reports whether code is a known ISO 4217 currency. Codes are
// upper case.
func IsCurrency(code string) bool {
	_, ok := currencies[code]
	return ok
}

func oneOf[T ~string](allowed ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		got := T(fl.Field().String())
		for _, a := range allowed {
			if got == a {
				return true
			}
		}
		return false
	}
}
