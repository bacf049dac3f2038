package usecase

const otpSubject = "Your OTP Code"

const otpTextFormat = "Your OTP is %s. It expires in %d minutes."

const otpEmailHTML = `<div style="font-family:system-ui,Segoe UI,Arial,sans-serif;max-width:520px">
  <h2 style="margin:0 0 12px">OTP Verification</h2>
  <p style="margin:0 0 16px">Use the code below to continue. It will expire in <b>{{.expires_in_minutes}} minutes</b>.</p>
  <div style="font-size:28px;letter-spacing:4px;font-weight:700;padding:12px 16px;border:1px solid #ddd;border-radius:10px;display:inline-block;">
    {{.code}}
  </div>
  <p style="margin:16px 0 0;color:#666;font-size:12px">If you didn't request this, you can ignore this email.</p>
  <p style="margin:8px 0 0;color:#999;font-size:11px">&copy; {{.year}}</p>
</div>
`
