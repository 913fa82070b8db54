package console

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(appHTML))
}

func (s *Server) loginPage(c *gin.Context) {
	if s.auth.LoggedIn(c.Request.Context()) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginHTML))
}

const baseCSS = `:root{--bg:#08090d;--sf:#0f1118;--sf2:#161923;--bd:#252a3a;--tx:#c8cdd8;--tx3:#5a6278;--ac:#3b82f6;--gn:#10b981;--rd:#ef4444;--or:#f59e0b}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:monospace;background:var(--bg);color:var(--tx);min-height:100vh}
.app{max-width:1280px;margin:0 auto;padding:20px 24px}
.hdr{display:flex;justify-content:space-between;align-items:center;padding:12px 0;border-bottom:1px solid var(--bd);margin-bottom:20px}
.nav{display:flex;gap:4px;margin-bottom:20px}
.nav button,.btn{font-family:monospace;font-size:12px;padding:8px 14px;border:1px solid var(--bd);background:var(--sf);color:var(--tx);cursor:pointer;border-radius:6px}
.nav button.on,.btn.pri{background:var(--ac);color:#fff}
.btn:disabled{opacity:.4;cursor:default}
input,select{font-family:monospace;background:var(--sf2);color:var(--tx);border:1px solid var(--bd);border-radius:6px;padding:7px 10px;font-size:12px}
.pn{background:var(--sf);border:1px solid var(--bd);border-radius:10px;margin-bottom:16px;padding:14px}
table{width:100%;border-collapse:collapse;margin-top:10px}
th{text-align:left;font-size:10px;color:var(--tx3);text-transform:uppercase;padding:8px;border-bottom:1px solid var(--bd);cursor:pointer}
td{padding:8px;border-bottom:1px solid rgba(37,42,58,.4);font-size:12px}
.err{color:var(--rd);font-size:11px}
#toasts{position:fixed;right:16px;bottom:16px;display:flex;flex-direction:column;gap:8px;z-index:10}
.toast{padding:10px 14px;border-radius:8px;border-left:3px solid;background:var(--sf2);font-size:12px}
.toast.success{border-color:var(--gn)}.toast.error{border-color:var(--rd)}.toast.warning{border-color:var(--or)}.toast.info{border-color:var(--ac)}`

const loginHTML = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Admin Console - Login</title>
<style>` + baseCSS + `</style></head>
<body><div class="app" style="max-width:360px;margin-top:120px">
<div class="pn"><h2 style="margin-bottom:12px">Admin Console</h2>
<form id="f"><p><input name="email" type="email" placeholder="email" style="width:100%"></p>
<p style="margin-top:8px"><input name="password" type="password" placeholder="password" style="width:100%"></p>
<p style="margin-top:12px"><button class="btn pri" type="submit">Log in</button> <span id="e" class="err"></span></p></form></div></div>
<script>
document.getElementById('f').onsubmit=async ev=>{ev.preventDefault();
const fd=new FormData(ev.target);
const r=await fetch('/api/login',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({email:fd.get('email'),password:fd.get('password')})});
const j=await r.json();if(j.success){location.href='/'}else{document.getElementById('e').textContent=j.message}};
</script></body></html>`

const appHTML = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Admin Console</title>
<style>` + baseCSS + `</style></head>
<body><div class="app">
<div class="hdr"><h1>Admin Console</h1><button class="btn" onclick="logout()">Log out</button></div>
<div class="nav" id="nav"></div>
<div id="main"></div></div>
<div id="toasts"></div>
<script>
const tabs=['dashboard','users','deposits','withdrawals','income','trades','treasury','roi'];
let cur='dashboard';
async function api(method,path,body){
  const r=await fetch('/api'+path,{method,headers:{'Content-Type':'application/json'},body:body?JSON.stringify(body):undefined});
  if(r.status===401){const j=await r.json();location.href=j.redirect||'/login';return null}
  const j=await r.json();pollToasts();return j;
}
async function pollToasts(){
  const r=await fetch('/api/notifications');if(!r.ok)return;const j=await r.json();
  for(const t of j.data||[]){const d=document.createElement('div');d.className='toast '+t.level;d.textContent=t.message;
    document.getElementById('toasts').appendChild(d);setTimeout(()=>d.remove(),5000)}
}
function esc(v){return String(v??'').replace(/[&<>"]/g,c=>({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;'}[c]))}
function nav(){document.getElementById('nav').innerHTML=tabs.map(t=>'<button class="'+(t===cur?'on':'')+'" onclick="show(\''+t+'\')">'+t+'</button>').join('')}
async function show(t){cur=t;nav();
  if(t==='dashboard')return dash();if(t==='treasury')return treasury();if(t==='roi')return roi();
  renderList(await api('GET','/lists/'+t));
}
async function dash(){const j=await api('GET','/dashboard');if(!j)return;
  document.getElementById('main').innerHTML='<div class="pn">'+(j.data.metrics||[]).map(m=>'<div><b>'+esc(m.value)+'</b> '+esc(m.label)+'</div>').join('')+'</div>'}
function renderList(j){if(!j||!j.data)return;const v=j.data,rows=v.rows||[];
  const cols=rows.length?Object.keys(rows[0]):[];
  let h='<div class="pn"><div>'+(v.filterKeys||[]).map(k=>'<input placeholder="'+k+'" data-k="'+k+'" value="'+esc(v.filters[k])+'">').join(' ')+
    ' <button class="btn pri" onclick="applyF()">Apply</button> <button class="btn" onclick="clearF()">Clear</button>'+
    (v.canExport?' <button class="btn" onclick="location.href=\'/api/lists/'+v.name+'/export\'">Export CSV</button> <button class="btn" onclick="job()">Queue export</button>':'')+'</div>';
  if(v.error)h+='<p class="err">'+esc(v.error)+'</p>';
  h+='<table><tr>'+cols.map(c=>'<th onclick="sortBy(\''+c+'\')">'+c+(v.sort.column===c?(v.sort.order==='asc'?' ▲':' ▼'):'')+'</th>').join('')+'</tr>'+
    rows.map(r=>'<tr>'+cols.map(c=>'<td>'+esc(typeof r[c]==='object'?JSON.stringify(r[c]):r[c])+'</td>').join('')+'</tr>').join('')+'</table>';
  const p=v.pagination||{};h+='<p style="margin-top:10px"><button class="btn" onclick="goto('+(v.page-1)+')">Prev</button> page '+v.page+' / '+(p.totalPages||1)+
    ' <button class="btn" onclick="goto('+(v.page+1)+')">Next</button> '+(p.total||0)+' rows</p></div>';
  if(v.name==='trades')h+=tradeForm();
  document.getElementById('main').innerHTML=h}
const tfields=['pair','direction','amount','netAmount','fee','entryPrice','exitPrice','payout','status','startTime','expiryTime','userId'];
let tfv={},tfe={};
function tradeForm(){return '<div class="pn" style="margin-top:12px"><b>New trade</b><p style="margin-top:10px">'+
  tfields.map(k=>'<input data-t="'+k+'" placeholder="'+k+'" value="'+esc(tfv[k])+'" oninput="tfv[this.dataset.t]=this.value"> <span class="err">'+esc(tfe[k]||'')+'</span>').join(' ')+
  ' <label><input type="checkbox" id="tdummy" checked> dummy</label> <button class="btn pri" onclick="createTrade()">Create</button></p></div>'}
async function createTrade(){const f={};tfields.forEach(k=>{if(tfv[k])f[k]=tfv[k]});f.isDummy=document.getElementById('tdummy').checked;
  const j=await api('POST','/trades',f);if(!j)return;tfe={};
  if(j.success)tfv={};else for(const e of (j.data&&j.data.fieldErrors)||[])tfe[e.field]=e.message;
  show('trades')}
function filters(){const f={};document.querySelectorAll('[data-k]').forEach(i=>f[i.dataset.k]=i.value);return f}
async function applyF(){renderList(await api('POST','/lists/'+cur+'/filters',{filters:filters(),apply:true}))}
async function clearF(){renderList(await api('POST','/lists/'+cur+'/filters',{clear:true}))}
async function goto(p){renderList(await api('POST','/lists/'+cur+'/page',{page:p}))}
async function sortBy(c){renderList(await api('POST','/lists/'+cur+'/sort',{column:c}))}
async function job(){await api('POST','/lists/'+cur+'/export-jobs')}
async function treasury(){const j=await api('GET','/treasury');if(j)renderTreasury(j.data)}
function renderTreasury(v){if(!v)return;const fe=v.fieldErrors||{},ld=v.loading||{};
  document.getElementById('main').innerHTML='<div class="pn"><select id="ch" onchange="tform({chain:this.value})">'+v.chains.map(c=>'<option'+(c===v.chain?' selected':'')+'>'+c+'</option>').join('')+'</select>'+
  ' <input id="src" placeholder="source address" value="'+esc(v.source)+'" onchange="tform({source:this.value})"> <span class="err">'+esc(fe.source||'')+'</span>'+
  ' <input id="dst" placeholder="destination address" value="'+esc(v.destination)+'" onchange="tform({destination:this.value})"> <span class="err">'+esc(fe.destination||'')+'</span>'+
  '<p style="margin-top:10px">'+[['balance','Balance'],['all','All balances'],['check','Check sweep'],['sweep','Sweep'],['sweep-all','Sweep all']].map(a=>
  '<button class="btn" '+(ld[a[0]]?'disabled':'')+' onclick="tact(\''+a[0]+'\')">'+a[1]+'</button>').join(' ')+'</p>'+
  (v.balance?'<p>USDT: '+esc(v.balance.usdtBalance)+' native: '+esc(v.balance.nativeBalance)+'</p>':'')+
  '<table>'+(v.balances||[]).map(b=>'<tr><td>'+esc(b.address)+'</td><td>'+esc(b.usdtBalance)+'</td><td>'+esc(b.nativeBalance)+'</td></tr>').join('')+'</table></div>'}
async function tform(f){const j=await api('POST','/treasury/form',f);if(j&&j.data)renderTreasury(j.data)}
async function tact(a){const j=await api('POST','/treasury/'+a);treasury()}
async function roi(){const j=await api('GET','/roi');if(!j||!j.data)return;const v=j.data;
  document.getElementById('main').innerHTML='<div class="pn">Current rate: <b>'+esc(v.rate)+'%</b><p style="margin-top:10px"><input id="rate" placeholder="0.1 - 100"> <label><input type="checkbox" id="cas"> apply to active</label> <button class="btn pri" onclick="setRoi()">Save</button> <span class="err">'+esc(v.fieldError||'')+'</span></p></div>'}
async function setRoi(){await api('POST','/roi',{rate:document.getElementById('rate').value,applyToActive:document.getElementById('cas').checked});roi()}
async function logout(){await fetch('/api/logout',{method:'POST'});location.href='/login'}
show(cur);setInterval(pollToasts,10000);
</script></body></html>`
