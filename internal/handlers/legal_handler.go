package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type LegalHandler struct{}

func NewLegalHandler() *LegalHandler {
	return &LegalHandler{}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - Univertix Ombudsman</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: August 2026</p>
<h2>Anonymous Complaints</h2>
<p>Anonymous complaints carry no personal data. The generated access code and the secret you choose are the only way to reach your complaint; we cannot recover either for you.</p>
<h2>Identified Complaints</h2>
<p>For registered accounts we store your email address and full name to link complaints to you and to notify you of responses.</p>
<h2>Data Storage</h2>
<p>Complaint data is stored on encrypted servers and is visible only to the university ombudsman team. We do not share it with third parties.</p>
<h2>Account Deletion</h2>
<p>You can delete your account at any time. Complaint records are retained for audit purposes but are no longer linked to an active account.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact the ombudsman office at ouvidoria@univertix.edu.br</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - Univertix Ombudsman</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Terms of Service</h1>
<p>Last updated: August 2026</p>
<h2>Acceptance</h2>
<p>By using the Univertix complaint channel, you agree to these terms.</p>
<h2>Proper Use</h2>
<p>The channel exists for genuine complaints about harassment, discrimination, infrastructure and related matters. Abusive or knowingly false submissions may be archived without response.</p>
<h2>Credentials</h2>
<p>You are responsible for safeguarding the access code and secret of an anonymous complaint. Lost credentials cannot be recovered.</p>
<h2>Contact</h2>
<p>Questions: ouvidoria@univertix.edu.br</p>
</body></html>`)
}
